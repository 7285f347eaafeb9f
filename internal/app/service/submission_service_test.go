package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/platform/judge0"
	"codecamp/internal/testutil"
)

type submissionFixture struct {
	users    *fakeUserRepo
	problems *fakeProblemRepo
	tx       *fakeTx
	locker   *fakeLocker
	emitter  *fakeEmitter
	exec     *fakeExecutor
	svc      *SubmissionService
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	f := &submissionFixture{
		users: newFakeUserRepo(&model.User{ID: "u1", Username: "ada", Email: "ada@example.com", Role: model.RoleUser}),
		problems: newFakeProblemRepo(&model.Problem{
			ID:         "p1",
			Title:      "Echo",
			Slug:       "echo",
			Difficulty: model.DifficultyMedium,
			TestCases: []model.TestCase{
				{Input: "1", Output: "1"},
				{Input: "2", Output: "2"},
				{Input: "3", Output: "3"},
				{Input: "4", Output: "4"},
				{Input: "h1", Output: "h1", IsHidden: true},
			},
		}, &model.Problem{ID: "empty", Title: "Empty", Difficulty: model.DifficultyEasy}),
		tx:      &fakeTx{},
		locker:  newFakeLocker(),
		emitter: &fakeEmitter{},
		exec:    newFakeExecutor(),
	}
	f.svc = NewSubmissionService(f.users, f.problems, f.tx, NewEvaluator(f.exec, 0), f.locker, f.emitter, SubmissionConfig{})
	f.svc.now = func() time.Time { return day }
	return f
}

func echoSubmit() SubmitRequest {
	return SubmitRequest{ProblemID: "p1", Code: "print(input())", Language: "python"}
}

func TestSubmitAcceptedFirstSolve(t *testing.T) {
	f := newSubmissionFixture(t)

	resp, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, resp.Status, model.OutcomeSolved)
	testutil.AssertEqual(t, resp.Message, "Accepted! You earned 25 points.")
	testutil.AssertEqual(t, resp.TestResults.Passed, 5)
	testutil.AssertEqual(t, resp.UserStats.Score, 25)
	testutil.AssertEqual(t, resp.UserStats.ProblemsSolved, 1)
	testutil.AssertEqual(t, resp.UserStats.Accuracy, 100.0)
	testutil.AssertEqual(t, resp.UserStats.Streak, 1)

	stored := f.users.get("u1")
	testutil.AssertEqual(t, stored.Score, 25)
	testutil.AssertEqual(t, len(stored.RecentActivity), 1)
	testutil.AssertEqual(t, f.problems.counts["p1"], counters{total: 1, accepted: 1})
	testutil.AssertEqual(t, f.tx.calls, 1)

	testutil.AssertEqual(t, len(f.emitter.calls), 1)
	testutil.AssertEqual(t, f.emitter.calls[0], emitted{userID: "u1", problemID: "p1", points: 25})
	testutil.AssertEqual(t, len(f.locker.held), 0)
}

func TestSubmitRepeatSolveIsIdempotentForScore(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "u1", echoSubmit())
	testutil.AssertNil(t, err)
	resp, err := f.svc.Submit(ctx, "u1", echoSubmit())
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, resp.Status, model.OutcomeSolved)
	testutil.AssertEqual(t, resp.Message, "Accepted! You have already solved this problem.")
	testutil.AssertEqual(t, resp.UserStats.Score, 25)
	testutil.AssertEqual(t, resp.UserStats.ProblemsSolved, 1)
	testutil.AssertEqual(t, resp.UserStats.TotalSubmissions, 2)
	testutil.AssertEqual(t, f.users.get("u1").SolvedProblems[0].Attempts, 2)
	testutil.AssertEqual(t, len(f.emitter.calls), 1)
	testutil.AssertEqual(t, f.problems.counts["p1"], counters{total: 2, accepted: 2})
}

func TestSubmitHiddenFailureFailsSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	f.exec.on("h1", "wrong")

	resp, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, resp.Status, model.OutcomeFailed)
	testutil.AssertEqual(t, resp.Message, "Wrong Answer: 4/5 test cases passed.")
	testutil.AssertEqual(t, resp.TestResults.Details[4].ActualOutput, model.RedactedValue)
	testutil.AssertEqual(t, resp.UserStats.Score, 0)
	testutil.AssertEqual(t, resp.UserStats.TotalSubmissions, 1)
	testutil.AssertEqual(t, len(f.emitter.calls), 0)
	testutil.AssertEqual(t, f.problems.counts["p1"], counters{total: 1})
	testutil.AssertEqual(t, f.users.get("u1").RecentActivity[0].Status, model.StatusWrongAnswer)
}

func TestSubmitValidation(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "u1", SubmitRequest{ProblemID: "p1", Language: "python"})
	testutil.AssertErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Submit(ctx, "u1", SubmitRequest{ProblemID: "p1", Code: "x", Language: "cobol"})
	testutil.AssertErrorIs(t, err, judge0.ErrUnsupportedLanguage)

	_, err = f.svc.Submit(ctx, "u1", SubmitRequest{Code: "x", Language: "python"})
	testutil.AssertErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Submit(ctx, "u1", SubmitRequest{ProblemID: "missing", Code: "x", Language: "python"})
	testutil.AssertErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.Submit(ctx, "ghost", echoSubmit())
	testutil.AssertErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.Submit(ctx, "u1", SubmitRequest{ProblemID: "empty", Code: "x", Language: "python"})
	testutil.AssertErrorIs(t, err, common.ErrValidation)

	testutil.AssertEqual(t, f.exec.count(), 0)
	testutil.AssertEqual(t, f.users.get("u1").TotalSubmissions, 0)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	f.locker.held["u1:p1"] = "someone-else"

	_, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertErrorIs(t, err, common.ErrSubmissionInProgress)
	testutil.AssertEqual(t, f.exec.count(), 0)
	testutil.AssertEqual(t, f.locker.held["u1:p1"], "someone-else")
}

func TestSubmitLockBackendDown(t *testing.T) {
	f := newSubmissionFixture(t)
	f.locker.err = errBoom

	_, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestSubmitPersistenceFailureLeavesNoSideEffects(t *testing.T) {
	f := newSubmissionFixture(t)
	f.users.saveErr = errBoom

	_, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertErrorIs(t, err, errBoom)
	testutil.AssertEqual(t, common.PublicMessage(err), "Server error")
	testutil.AssertEqual(t, len(f.emitter.calls), 0)
	testutil.AssertEqual(t, f.users.get("u1").TotalSubmissions, 0)
	testutil.AssertEqual(t, len(f.locker.held), 0)
}

func TestSubmitJudgeMisconfigured(t *testing.T) {
	f := newSubmissionFixture(t)
	f.exec.onErr("1", &judge0.ConfigurationError{Reason: "JUDGE0_API_KEY is not set"})

	_, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertTrue(t, err != nil, "misconfiguration aborts the submission")
	testutil.AssertEqual(t, common.HTTPStatusFromError(err), 503)
	testutil.AssertEqual(t, f.users.get("u1").TotalSubmissions, 0)
}

func TestRunCodeUsesFirstThreeVisibleCases(t *testing.T) {
	f := newSubmissionFixture(t)

	resp, err := f.svc.RunCode(context.Background(), RunCodeRequest{ProblemID: "p1", Code: "print(input())", Language: "python"})
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, resp.Output == nil, "no raw output for problem runs")
	testutil.AssertEqual(t, resp.TestResults.Total, 3)
	testutil.AssertEqual(t, f.exec.count(), 3)
	for _, d := range resp.TestResults.Details {
		testutil.AssertFalse(t, d.IsHidden, "hidden cases are never run")
	}
	testutil.AssertEqual(t, f.users.get("u1").TotalSubmissions, 0)
	testutil.AssertEqual(t, f.problems.counts["p1"], counters{})
}

func TestRunCodeWithStdin(t *testing.T) {
	f := newSubmissionFixture(t)
	stdin := "hello"

	resp, err := f.svc.RunCode(context.Background(), RunCodeRequest{ProblemID: "p1", Code: "x", Language: "python", Stdin: &stdin})
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, resp.TestResults == nil, "stdin runs skip test cases")
	testutil.AssertEqual(t, resp.Output.Stdout, "hello")
	testutil.AssertEqual(t, f.exec.count(), 1)
}

func TestRunCodeWithoutProblemOrStdin(t *testing.T) {
	f := newSubmissionFixture(t)

	resp, err := f.svc.RunCode(context.Background(), RunCodeRequest{Code: "print(1)", Language: "python"})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, resp.Output.Stdout, "")

	_, err = f.svc.RunCode(context.Background(), RunCodeRequest{ProblemID: "empty", Code: "x", Language: "python"})
	testutil.AssertErrorIs(t, err, common.ErrValidation)
}

func TestTotalExecutionTime(t *testing.T) {
	got := totalExecutionTime(&model.TestResults{Details: []model.TestResult{{Time: "0.25"}, {Time: ""}, {Time: "0.5"}, {Time: "n/a"}}})
	testutil.AssertEqual(t, got, 0.75)
}

func TestSubmitMessageMentionsFirstFailureStatus(t *testing.T) {
	f := newSubmissionFixture(t)
	f.exec.onStatus("2", judge0.Status{ID: 5, Description: "Time Limit Exceeded"}, "")

	resp, err := f.svc.Submit(context.Background(), "u1", echoSubmit())
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, strings.HasPrefix(resp.Message, "Time Limit Exceeded:"), resp.Message)
}
