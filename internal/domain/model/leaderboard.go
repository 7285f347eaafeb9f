package model

type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	UserID         string  `json:"userId" bson:"_id"`
	Username       string  `json:"username" bson:"username"`
	Score          int     `json:"score" bson:"score"`
	ProblemsSolved int     `json:"problemsSolved" bson:"problemsSolved"`
	Accuracy       float64 `json:"accuracy" bson:"accuracy"`
	Streak         int     `json:"streak" bson:"streak"`
}
