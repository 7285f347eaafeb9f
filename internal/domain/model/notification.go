package model

import "time"

const NotificationTypeAchievement = "achievement"

type Notification struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Type      string    `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	Points    int       `json:"points,omitempty" bson:"points,omitempty"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// AchievementTask is the queued form of a first-solve notification.
// ID doubles as the notification's _id so redelivery is idempotent.
type AchievementTask struct {
	ID           string    `json:"id" bson:"id"`
	UserID       string    `json:"userId" bson:"userId"`
	ProblemID    string    `json:"problemId" bson:"problemId"`
	ProblemTitle string    `json:"problemTitle" bson:"problemTitle"`
	Points       int       `json:"points" bson:"points"`
	Attempts     int       `json:"attempts" bson:"attempts"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

const (
	FailureStageEnqueue = "enqueue"
	FailureStageDeliver = "deliver"
)

// TaskFailure is one entry of the notification failure log.
type TaskFailure struct {
	ID       string          `json:"id" bson:"_id"`
	Task     AchievementTask `json:"task" bson:"task"`
	Stage    string          `json:"stage" bson:"stage"`
	Error    string          `json:"error" bson:"error"`
	FailedAt time.Time       `json:"failedAt" bson:"failedAt"`
}
