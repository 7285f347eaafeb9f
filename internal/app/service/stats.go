package service

import (
	"math"
	"time"

	"codecamp/internal/domain/model"
)

// SubmissionEvent is one graded submission as seen by the statistics rules.
type SubmissionEvent struct {
	ProblemID     string
	ProblemTitle  string
	Difficulty    model.ProblemDifficulty
	Language      string
	Status        string
	Accepted      bool
	ExecutionTime float64
	At            time.Time
}

type StatsOutcome struct {
	NewlySolved   bool
	RepeatSolve   bool
	PointsAwarded int
	Attempts      int
}

// ApplySubmission folds ev into u's counters and history.
func ApplySubmission(u *model.User, ev SubmissionEvent) StatsOutcome {
	var out StatsOutcome

	u.TotalSubmissions++
	u.RecentActivity = prependActivity(u.RecentActivity, model.ActivityEntry{
		ProblemID:     ev.ProblemID,
		ProblemTitle:  ev.ProblemTitle,
		Status:        ev.Status,
		Language:      ev.Language,
		SubmittedAt:   ev.At,
		ExecutionTime: ev.ExecutionTime,
	})

	if ev.Accepted {
		if idx := u.SolvedIndex(ev.ProblemID); idx >= 0 {
			u.SolvedProblems[idx].Attempts++
			out.RepeatSolve = true
			out.Attempts = u.SolvedProblems[idx].Attempts
		} else {
			u.SolvedProblems = append(u.SolvedProblems, model.SolvedProblem{
				ProblemID: ev.ProblemID,
				SolvedAt:  ev.At,
				Attempts:  1,
			})
			u.ProblemsSolved++
			u.Streak = NextStreak(u.Streak, u.LastActive, ev.At)
			at := ev.At
			u.LastActive = &at
			out.PointsAwarded = ev.Difficulty.Points()
			u.Score += out.PointsAwarded
			out.NewlySolved = true
			out.Attempts = 1
		}
	}

	u.Accuracy = Accuracy(u.ProblemsSolved, u.TotalSubmissions)
	return out
}

// Accuracy is solved/total as a percentage rounded to one decimal place.
func Accuracy(solved, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(solved)*1000/float64(total)) / 10
}

// NextStreak compares calendar days in UTC: yesterday extends the streak,
// today keeps it, anything older (or never) restarts it at 1.
func NextStreak(current int, lastActive *time.Time, now time.Time) int {
	if lastActive == nil {
		return 1
	}
	switch d := daysBetween(*lastActive, now); {
	case d <= 0:
		return current
	case d == 1:
		return current + 1
	default:
		return 1
	}
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func prependActivity(list []model.ActivityEntry, entry model.ActivityEntry) []model.ActivityEntry {
	n := len(list) + 1
	if n > model.MaxRecentActivity {
		n = model.MaxRecentActivity
	}
	out := make([]model.ActivityEntry, 0, n)
	out = append(out, entry)
	for _, e := range list {
		if len(out) == n {
			break
		}
		out = append(out, e)
	}
	return out
}
