package service

import (
	"context"
	"fmt"
	"strings"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/judge0"
	"codecamp/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type ProblemRequest struct {
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Difficulty       model.ProblemDifficulty `json:"difficulty"`
	TestCases        []model.TestCase        `json:"testCases"`
	StarterTemplates map[string]string       `json:"starterTemplates"`
	CPUTimeLimit     float64                 `json:"cpuTimeLimit"`
	MemoryLimit      int                     `json:"memoryLimit"`
}

func (req *ProblemRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if !req.Difficulty.Valid() {
		return fmt.Errorf("difficulty must be Easy, Medium or Hard: %w", common.ErrValidation)
	}
	if len(req.TestCases) == 0 {
		return fmt.Errorf("at least one test case is required: %w", common.ErrValidation)
	}
	for lang := range req.StarterTemplates {
		if _, ok := judge0.LanguageID(lang); !ok {
			return fmt.Errorf("starter template for %w %q", judge0.ErrUnsupportedLanguage, lang)
		}
	}
	if req.CPUTimeLimit < 0 || req.MemoryLimit < 0 {
		return fmt.Errorf("limits must not be negative: %w", common.ErrValidation)
	}
	return nil
}

func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req ProblemRequest) (*model.Problem, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(req.Title),
		Slug:             slug.Make(req.Title),
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		TestCases:        req.TestCases,
		StarterTemplates: req.StarterTemplates,
		CPUTimeLimit:     req.CPUTimeLimit,
		MemoryLimit:      req.MemoryLimit,
		CreatedBy:        userID,
	}
	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}

	logger.Info(ctx, "problem created", zap.String("problem_id", problem.ID), zap.String("slug", problem.Slug))
	return problem, nil
}

// UpdateProblem replaces the editable content. Submission counters are kept.
func (s *ProblemService) UpdateProblem(ctx context.Context, problemID string, req ProblemRequest) (*model.Problem, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	problem, err := s.problemRepo.FindByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	problem.Title = strings.TrimSpace(req.Title)
	problem.Slug = slug.Make(req.Title)
	problem.Description = req.Description
	problem.Difficulty = req.Difficulty
	problem.TestCases = req.TestCases
	problem.StarterTemplates = req.StarterTemplates
	problem.CPUTimeLimit = req.CPUTimeLimit
	problem.MemoryLimit = req.MemoryLimit

	if err := s.problemRepo.Update(ctx, problem); err != nil {
		return nil, fmt.Errorf("failed to update problem: %w", err)
	}
	return problem, nil
}

// GetProblemDetails hides hidden test cases from everyone but admins.
func (s *ProblemService) GetProblemDetails(ctx context.Context, problemSlug string, userRole string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindBySlug(ctx, problemSlug)
	if err != nil {
		return nil, err
	}
	if userRole != model.RoleAdmin {
		problem.TestCases = problem.VisibleTestCases(0)
	}
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int, difficulty model.ProblemDifficulty) ([]model.Problem, int64, error) {
	if difficulty != "" && !difficulty.Valid() {
		return nil, 0, fmt.Errorf("unknown difficulty %q: %w", difficulty, common.ErrBadRequest)
	}
	return s.problemRepo.List(ctx, repository.ProblemFilter{
		Difficulty: difficulty,
		Page:       page,
		PageSize:   pageSize,
	})
}
