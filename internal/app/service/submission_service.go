package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/judge0"
	"codecamp/internal/platform/logger"

	"go.uber.org/zap"
)

// maxRunCodeCases is how many visible test cases POST /run-code evaluates.
const maxRunCodeCases = 3

// SubmissionLocker serialises submissions per (user, problem).
type SubmissionLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) (bool, error)
}

// AchievementEmitter is the best-effort side effect of a first-time solve.
type AchievementEmitter interface {
	EmitAchievement(ctx context.Context, userID string, problem *model.Problem, points int)
}

type SubmissionConfig struct {
	Deadline time.Duration // whole-submission evaluation budget
	LockTTL  time.Duration
}

type SubmissionService struct {
	userRepo    repository.UserRepository
	problemRepo repository.ProblemRepository
	tx          repository.Transactor
	evaluator   *Evaluator
	locker      SubmissionLocker
	notifier    AchievementEmitter
	cfg         SubmissionConfig
	now         func() time.Time
}

func NewSubmissionService(
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	tx repository.Transactor,
	evaluator *Evaluator,
	locker SubmissionLocker,
	notifier AchievementEmitter,
	cfg SubmissionConfig,
) *SubmissionService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &SubmissionService{
		userRepo:    userRepo,
		problemRepo: problemRepo,
		tx:          tx,
		evaluator:   evaluator,
		locker:      locker,
		notifier:    notifier,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type SubmitRequest struct {
	ProblemID string `json:"problemId"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

type RunCodeRequest struct {
	ProblemID string  `json:"problemId,omitempty"`
	Code      string  `json:"code"`
	Language  string  `json:"language"`
	Stdin     *string `json:"stdin,omitempty"`
}

func validateSource(code, language string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("code is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(language) == "" {
		return fmt.Errorf("language is required: %w", common.ErrValidation)
	}
	if _, ok := judge0.LanguageID(language); !ok {
		return fmt.Errorf("%w: %q", judge0.ErrUnsupportedLanguage, language)
	}
	return nil
}

// Submit grades code against every test case of the problem and folds the
// outcome into the user's statistics.
func (s *SubmissionService) Submit(ctx context.Context, userID string, req SubmitRequest) (*model.SubmissionResponse, error) {
	if err := validateSource(req.Code, req.Language); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ProblemID) == "" {
		return nil, fmt.Errorf("problemId is required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	problem, err := s.problemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("problem not found: %w", err)
	}
	if len(problem.TestCases) == 0 {
		return nil, fmt.Errorf("problem %s has no test cases: %w", problem.ID, common.ErrValidation)
	}

	lockKey := userID + ":" + problem.ID
	token, acquired, err := s.locker.Acquire(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		logger.Error(ctx, "submission lock unavailable", zap.String("problem_id", problem.ID), zap.Error(err))
		return nil, fmt.Errorf("submission lock: %w", common.ErrServiceUnavailable)
	}
	if !acquired {
		return nil, common.ErrSubmissionInProgress
	}
	defer func() {
		if _, err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			logger.Warn(ctx, "failed to release submission lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	alreadySolved := user.SolvedIndex(problem.ID) >= 0

	evalCtx := ctx
	if s.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, s.cfg.Deadline)
		defer cancel()
	}
	results, err := s.evaluator.Evaluate(evalCtx, EvaluateInput{
		SourceCode:   req.Code,
		Language:     req.Language,
		TestCases:    problem.TestCases,
		CPUTimeLimit: problem.CPUTimeLimit,
		MemoryLimit:  problem.MemoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate submission: %w", err)
	}

	accepted := results.AllPassed()
	status := model.StatusAccepted
	if !accepted {
		status = results.FirstFailure().Status
	}

	event := SubmissionEvent{
		ProblemID:     problem.ID,
		ProblemTitle:  problem.Title,
		Difficulty:    problem.Difficulty,
		Language:      req.Language,
		Status:        status,
		Accepted:      accepted,
		ExecutionTime: totalExecutionTime(results),
		At:            s.now(),
	}

	var (
		updated *model.User
		outcome StatsOutcome
	)
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		fresh, err := s.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		outcome = ApplySubmission(fresh, event)
		if err := s.userRepo.SaveStats(txCtx, fresh); err != nil {
			return fmt.Errorf("save user stats: %w", err)
		}
		if err := s.problemRepo.IncrementCounters(txCtx, problem.ID, accepted); err != nil {
			return fmt.Errorf("update problem counters: %w", err)
		}
		updated = fresh
		return nil
	})
	if err != nil {
		logger.Error(ctx, "failed to persist submission",
			zap.String("problem_id", problem.ID),
			zap.String("status", status),
			zap.Error(err))
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	logger.Info(ctx, "submission graded",
		zap.String("problem_id", problem.ID),
		zap.String("language", req.Language),
		zap.String("status", status),
		zap.Int("passed", results.Passed),
		zap.Int("total", results.Total),
		zap.Bool("previously_solved", alreadySolved),
		zap.Bool("newly_solved", outcome.NewlySolved))

	if outcome.NewlySolved {
		s.notifier.EmitAchievement(ctx, userID, problem, outcome.PointsAwarded)
	}

	resp := &model.SubmissionResponse{
		Status:      model.OutcomeFailed,
		TestResults: *results,
		UserStats:   updated.Stats(),
	}
	switch {
	case outcome.NewlySolved:
		resp.Status = model.OutcomeSolved
		resp.Message = fmt.Sprintf("Accepted! You earned %d points.", outcome.PointsAwarded)
	case outcome.RepeatSolve:
		resp.Status = model.OutcomeSolved
		resp.Message = "Accepted! You have already solved this problem."
	default:
		resp.Message = fmt.Sprintf("%s: %d/%d test cases passed.", status, results.Passed, results.Total)
	}
	return resp, nil
}

// RunCode executes code without touching any statistics: against raw stdin
// when given (or when no problem is named), else against the first visible
// test cases of the problem.
func (s *SubmissionService) RunCode(ctx context.Context, req RunCodeRequest) (*model.RunCodeResponse, error) {
	if err := validateSource(req.Code, req.Language); err != nil {
		return nil, err
	}

	in := EvaluateInput{SourceCode: req.Code, Language: req.Language}

	if req.Stdin != nil || strings.TrimSpace(req.ProblemID) == "" {
		stdin := ""
		if req.Stdin != nil {
			stdin = *req.Stdin
		}
		out, err := s.evaluator.Run(ctx, in, stdin)
		if err != nil {
			return nil, fmt.Errorf("run code: %w", err)
		}
		return &model.RunCodeResponse{Output: out}, nil
	}

	problem, err := s.problemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("problem not found: %w", err)
	}
	in.TestCases = problem.VisibleTestCases(maxRunCodeCases)
	if len(in.TestCases) == 0 {
		return nil, fmt.Errorf("problem has no visible test cases, provide stdin: %w", common.ErrValidation)
	}
	in.CPUTimeLimit = problem.CPUTimeLimit
	in.MemoryLimit = problem.MemoryLimit

	results, err := s.evaluator.Evaluate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("run code: %w", err)
	}
	return &model.RunCodeResponse{TestResults: results}, nil
}

func totalExecutionTime(results *model.TestResults) float64 {
	var total float64
	for _, d := range results.Details {
		if d.Time == "" {
			continue
		}
		if v, err := strconv.ParseFloat(d.Time, 64); err == nil {
			total += v
		}
	}
	return total
}
