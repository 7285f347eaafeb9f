package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MaxRecentActivity bounds User.RecentActivity.
const MaxRecentActivity = 20

type User struct {
	ID               string          `json:"id" bson:"_id"`
	Username         string          `json:"username" bson:"username"`
	Email            string          `json:"email" bson:"email"`
	HashedPassword   string          `json:"-" bson:"hashedPassword"`
	Role             string          `json:"role" bson:"role"`
	ProblemsSolved   int             `json:"problemsSolved" bson:"problemsSolved"`
	TotalSubmissions int             `json:"totalSubmissions" bson:"totalSubmissions"`
	Accuracy         float64         `json:"accuracy" bson:"accuracy"`
	Streak           int             `json:"streak" bson:"streak"`
	Score            int             `json:"score" bson:"score"`
	LastActive       *time.Time      `json:"lastActive,omitempty" bson:"lastActive,omitempty"`
	SolvedProblems   []SolvedProblem `json:"solvedProblems" bson:"solvedProblems"`
	RecentActivity   []ActivityEntry `json:"recentActivity" bson:"recentActivity"`
	CreatedAt        time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt" bson:"updatedAt"`
}

type SolvedProblem struct {
	ProblemID string    `json:"problemId" bson:"problemId"`
	SolvedAt  time.Time `json:"solvedAt" bson:"solvedAt"`
	Attempts  int       `json:"attempts" bson:"attempts"`
}

type ActivityEntry struct {
	ProblemID     string    `json:"problemId" bson:"problemId"`
	ProblemTitle  string    `json:"problemTitle" bson:"problemTitle"`
	Status        string    `json:"status" bson:"status"`
	Language      string    `json:"language" bson:"language"`
	SubmittedAt   time.Time `json:"submittedAt" bson:"submittedAt"`
	ExecutionTime float64   `json:"executionTime" bson:"executionTime"` // seconds, summed over test cases
}

// SolvedIndex returns the position of problemID in SolvedProblems or -1.
func (u *User) SolvedIndex(problemID string) int {
	for i, sp := range u.SolvedProblems {
		if sp.ProblemID == problemID {
			return i
		}
	}
	return -1
}

type UserStats struct {
	ProblemsSolved   int     `json:"problemsSolved"`
	TotalSubmissions int     `json:"totalSubmissions"`
	Accuracy         float64 `json:"accuracy"`
	Streak           int     `json:"streak"`
	Score            int     `json:"score"`
}

func (u *User) Stats() UserStats {
	return UserStats{
		ProblemsSolved:   u.ProblemsSolved,
		TotalSubmissions: u.TotalSubmissions,
		Accuracy:         u.Accuracy,
		Streak:           u.Streak,
		Score:            u.Score,
	}
}
