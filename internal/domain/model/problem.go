package model

import (
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

func (d ProblemDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Points awarded for the first accepted solution of a problem.
func (d ProblemDifficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 25
	case DifficultyHard:
		return 50
	}
	return 0
}

type Problem struct {
	ID                  string            `json:"id" bson:"_id"`
	Title               string            `json:"title" bson:"title"`
	Slug                string            `json:"slug" bson:"slug"`
	Description         string            `json:"description" bson:"description"`
	Difficulty          ProblemDifficulty `json:"difficulty" bson:"difficulty"`
	TestCases           []TestCase        `json:"testCases,omitempty" bson:"testCases"`
	StarterTemplates    map[string]string `json:"starterTemplates,omitempty" bson:"starterTemplates,omitempty"`
	CPUTimeLimit        float64           `json:"cpuTimeLimit,omitempty" bson:"cpuTimeLimit,omitempty"`
	MemoryLimit         int               `json:"memoryLimit,omitempty" bson:"memoryLimit,omitempty"`
	TotalSubmissions    int               `json:"totalSubmissions" bson:"totalSubmissions"`
	AcceptedSubmissions int               `json:"acceptedSubmissions" bson:"acceptedSubmissions"`
	CreatedBy           string            `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt           time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type TestCase struct {
	Input    string `json:"input" bson:"input"`
	Output   string `json:"output" bson:"output"`
	IsHidden bool   `json:"isHidden" bson:"isHidden"`
}

// VisibleTestCases returns at most limit non-hidden cases in stored order; limit <= 0 means all.
func (p *Problem) VisibleTestCases(limit int) []TestCase {
	var out []TestCase
	for _, tc := range p.TestCases {
		if tc.IsHidden {
			continue
		}
		out = append(out, tc)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
