package model

// Submission outcome statuses. Per-case statuses otherwise carry the
// execution service's own description ("Time Limit Exceeded", ...).
const (
	StatusAccepted     = "Accepted"
	StatusWrongAnswer  = "Wrong Answer"
	StatusRuntimeError = "Runtime Error"
)

// RedactedValue replaces hidden test-case data in responses.
const RedactedValue = "[hidden]"

// TestResult is the per-test-case outcome of one evaluation. Never persisted.
type TestResult struct {
	Index          int    `json:"index"`
	Passed         bool   `json:"passed"`
	Status         string `json:"status"`
	IsHidden       bool   `json:"isHidden"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput"`
	Stderr         string `json:"stderr,omitempty"`
	CompileOutput  string `json:"compileOutput,omitempty"`
	Time           string `json:"time,omitempty"`
	Memory         int    `json:"memory,omitempty"`
}

type TestResults struct {
	Passed  int          `json:"passed"`
	Total   int          `json:"total"`
	Details []TestResult `json:"details"`
}

// AllPassed is false for an empty run.
func (r *TestResults) AllPassed() bool {
	return r.Total > 0 && r.Passed == r.Total
}

// FirstFailure returns the first failing case, or nil.
func (r *TestResults) FirstFailure() *TestResult {
	for i := range r.Details {
		if !r.Details[i].Passed {
			return &r.Details[i]
		}
	}
	return nil
}

const (
	OutcomeSolved = "solved"
	OutcomeFailed = "failed"
)

type SubmissionResponse struct {
	Status      string      `json:"status"`
	Message     string      `json:"message"`
	TestResults TestResults `json:"testResults"`
	UserStats   UserStats   `json:"userStats"`
}

// RunOutput is a raw run against caller-supplied stdin.
type RunOutput struct {
	Status        string `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr,omitempty"`
	CompileOutput string `json:"compileOutput,omitempty"`
	Time          string `json:"time,omitempty"`
	Memory        int    `json:"memory,omitempty"`
}

type RunCodeResponse struct {
	Output      *RunOutput   `json:"output,omitempty"`
	TestResults *TestResults `json:"testResults,omitempty"`
}
