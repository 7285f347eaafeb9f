package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/judge0"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	saveErr   error
	saveCalls int
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.SolvedProblems = append([]model.SolvedProblem(nil), u.SolvedProblems...)
	c.RecentActivity = append([]model.ActivityEntry(nil), u.RecentActivity...)
	return &c
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return common.ErrConflict
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) SaveStats(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LeaderboardEntry
	for _, u := range r.users {
		out = append(out, model.LeaderboardEntry{UserID: u.ID, Username: u.Username, Score: u.Score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) get(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type counters struct{ total, accepted int }

type fakeProblemRepo struct {
	mu       sync.Mutex
	problems map[string]*model.Problem
	counts   map[string]counters
}

func newFakeProblemRepo(problems ...*model.Problem) *fakeProblemRepo {
	r := &fakeProblemRepo{problems: map[string]*model.Problem{}, counts: map[string]counters{}}
	for _, p := range problems {
		r.problems[p.ID] = p
	}
	return r
}

func (r *fakeProblemRepo) Create(_ context.Context, p *model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.problems {
		if existing.Slug == p.Slug {
			return common.ErrConflict
		}
	}
	c := *p
	r.problems[p.ID] = &c
	return nil
}

func (r *fakeProblemRepo) Update(_ context.Context, p *model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[p.ID]; !ok {
		return common.ErrNotFound
	}
	c := *p
	r.problems[p.ID] = &c
	return nil
}

func (r *fakeProblemRepo) FindByID(_ context.Context, id string) (*model.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	c.TestCases = append([]model.TestCase(nil), p.TestCases...)
	return &c, nil
}

func (r *fakeProblemRepo) FindBySlug(_ context.Context, slug string) (*model.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.problems {
		if p.Slug == slug {
			c := *p
			c.TestCases = append([]model.TestCase(nil), p.TestCases...)
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeProblemRepo) List(_ context.Context, f repository.ProblemFilter) ([]model.Problem, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Problem
	for _, p := range r.problems {
		if f.Difficulty == "" || p.Difficulty == f.Difficulty {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProblemRepo) IncrementCounters(_ context.Context, id string, accepted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.counts[id]
	c.total++
	if accepted {
		c.accepted++
	}
	r.counts[id] = c
	return nil
}

// fakeTx runs fn directly; failed commits are simulated by the repos.
type fakeTx struct{ calls int }

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released []string
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]string{}} }

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "tok-" + key
	return l.held[key], true, nil
}

func (l *fakeLocker) Release(_ context.Context, key, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return false, nil
	}
	delete(l.held, key)
	l.released = append(l.released, key)
	return true, nil
}

type emitted struct {
	userID    string
	problemID string
	points    int
}

type fakeEmitter struct {
	mu    sync.Mutex
	calls []emitted
}

func (e *fakeEmitter) EmitAchievement(_ context.Context, userID string, problem *model.Problem, points int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, emitted{userID: userID, problemID: problem.ID, points: points})
}

// fakeExecutor answers by stdin. Unknown stdin echoes itself back.
type fakeExecutor struct {
	mu       sync.Mutex
	results  map[string]*judge0.Result
	errs     map[string]error
	requests []judge0.Request
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{results: map[string]*judge0.Result{}, errs: map[string]error{}}
}

func (e *fakeExecutor) on(stdin, stdout string) *fakeExecutor {
	e.results[stdin] = &judge0.Result{
		Status: judge0.Status{ID: judge0.StatusAccepted, Description: "Accepted"},
		Stdout: stdout,
		Time:   "0.010",
		Memory: 1024,
	}
	return e
}

func (e *fakeExecutor) onStatus(stdin string, status judge0.Status, stderr string) *fakeExecutor {
	e.results[stdin] = &judge0.Result{Status: status, Stderr: stderr}
	return e
}

func (e *fakeExecutor) onErr(stdin string, err error) *fakeExecutor {
	e.errs[stdin] = err
	return e
}

func (e *fakeExecutor) Execute(ctx context.Context, req judge0.Request) (*judge0.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := judge0.LanguageID(req.Language); !ok {
		return nil, judge0.ErrUnsupportedLanguage
	}
	if err, ok := e.errs[req.Stdin]; ok {
		return nil, err
	}
	if res, ok := e.results[req.Stdin]; ok {
		c := *res
		return &c, nil
	}
	return &judge0.Result{
		Status: judge0.Status{ID: judge0.StatusAccepted, Description: "Accepted"},
		Stdout: req.Stdin,
	}, nil
}

func (e *fakeExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items map[string]*model.Notification
	err   error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: map[string]*model.Notification{}}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.items[n.ID]; ok {
		return common.ErrConflict
	}
	c := *n
	r.items[n.ID] = &c
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _ int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return common.ErrNotFound
	}
	n.Read = true
	return nil
}

type fakeFailureLog struct {
	mu      sync.Mutex
	entries []model.TaskFailure
}

func (f *fakeFailureLog) Record(_ context.Context, e *model.TaskFailure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeFailureLog) Recent(_ context.Context, limit int) ([]model.TaskFailure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

type fakePusher struct {
	mu    sync.Mutex
	tasks []model.AchievementTask
	err   error
}

func (p *fakePusher) Push(_ context.Context, task any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task.(model.AchievementTask))
	return nil
}

var errBoom = errors.New("boom")
