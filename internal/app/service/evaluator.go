package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"codecamp/internal/domain/model"
	"codecamp/internal/platform/judge0"
	"codecamp/internal/platform/logger"

	"go.uber.org/zap"
)

// Executor runs one program against one stdin. *judge0.Client implements it.
type Executor interface {
	Execute(ctx context.Context, req judge0.Request) (*judge0.Result, error)
}

type Evaluator struct {
	executor     Executor
	caseDeadline time.Duration
}

func NewEvaluator(executor Executor, caseDeadline time.Duration) *Evaluator {
	return &Evaluator{executor: executor, caseDeadline: caseDeadline}
}

type EvaluateInput struct {
	SourceCode   string
	Language     string
	TestCases    []model.TestCase
	CPUTimeLimit float64
	MemoryLimit  int
}

// Evaluate runs the test cases one after another. A failing case never stops
// the run; only a misconfigured judge, an unknown language or cancellation of
// ctx abort it with an error.
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluateInput) (*model.TestResults, error) {
	results := &model.TestResults{
		Total:   len(in.TestCases),
		Details: make([]model.TestResult, 0, len(in.TestCases)),
	}

	for i, tc := range in.TestCases {
		detail, err := e.runCase(ctx, in, i, tc)
		if err != nil {
			return nil, err
		}
		if detail.Passed {
			results.Passed++
		}
		results.Details = append(results.Details, detail)
	}
	return results, nil
}

func (e *Evaluator) runCase(ctx context.Context, in EvaluateInput, index int, tc model.TestCase) (model.TestResult, error) {
	detail := model.TestResult{
		Index:          index,
		IsHidden:       tc.IsHidden,
		Input:          tc.Input,
		ExpectedOutput: tc.Output,
	}

	res, err := e.execute(ctx, in, tc.Input)
	switch {
	case err != nil:
		if isSystemic(err) || errors.Is(ctx.Err(), context.Canceled) {
			return detail, err
		}
		logger.Warn(ctx, "test case execution failed",
			zap.Int("case", index),
			zap.String("language", in.Language),
			zap.Error(err))
		detail.Status = model.StatusRuntimeError
		detail.Stderr = executionErrorMessage(err)
	case !res.Succeeded():
		detail.Status = res.Status.Description
		if detail.Status == "" {
			detail.Status = model.StatusRuntimeError
		}
		fillFromResult(&detail, res)
	default:
		fillFromResult(&detail, res)
		if strings.TrimSpace(res.Stdout) == strings.TrimSpace(tc.Output) {
			detail.Passed = true
			detail.Status = model.StatusAccepted
		} else {
			detail.Status = model.StatusWrongAnswer
		}
	}

	if tc.IsHidden {
		redact(&detail)
	}
	return detail, nil
}

func (e *Evaluator) execute(ctx context.Context, in EvaluateInput, stdin string) (*judge0.Result, error) {
	if e.caseDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.caseDeadline)
		defer cancel()
	}
	return e.executor.Execute(ctx, judge0.Request{
		SourceCode:   in.SourceCode,
		Language:     in.Language,
		Stdin:        stdin,
		CPUTimeLimit: in.CPUTimeLimit,
		MemoryLimit:  in.MemoryLimit,
	})
}

// Run executes the program once against raw stdin. Execution failures are
// reported in the output, not as an error.
func (e *Evaluator) Run(ctx context.Context, in EvaluateInput, stdin string) (*model.RunOutput, error) {
	res, err := e.execute(ctx, in, stdin)
	if err != nil {
		if isSystemic(err) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, err
		}
		logger.Warn(ctx, "run code execution failed", zap.String("language", in.Language), zap.Error(err))
		return &model.RunOutput{Status: model.StatusRuntimeError, Stderr: executionErrorMessage(err)}, nil
	}
	return &model.RunOutput{
		Status:        res.Status.Description,
		Stdout:        res.Stdout,
		Stderr:        res.Stderr,
		CompileOutput: res.CompileOutput,
		Time:          res.Time,
		Memory:        res.Memory,
	}, nil
}

func isSystemic(err error) bool {
	var cfgErr *judge0.ConfigurationError
	return errors.As(err, &cfgErr) || errors.Is(err, judge0.ErrUnsupportedLanguage)
}

func executionErrorMessage(err error) string {
	var timeoutErr *judge0.PollTimeoutError
	var transportErr *judge0.TransportError
	switch {
	case errors.As(err, &timeoutErr):
		return "execution did not finish before the deadline"
	case errors.As(err, &transportErr):
		return "execution service returned an error"
	default:
		return "execution service unavailable"
	}
}

func fillFromResult(detail *model.TestResult, res *judge0.Result) {
	detail.ActualOutput = res.Stdout
	detail.Stderr = res.Stderr
	detail.CompileOutput = res.CompileOutput
	detail.Time = res.Time
	detail.Memory = res.Memory
}

func redact(detail *model.TestResult) {
	detail.Input = model.RedactedValue
	detail.ExpectedOutput = model.RedactedValue
	detail.ActualOutput = model.RedactedValue
	if detail.Stderr != "" {
		detail.Stderr = model.RedactedValue
	}
}
