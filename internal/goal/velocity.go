package goal

import (
	"math"
	"time"

	"github.com/leminhq/remindbot/internal/task"
)

// DefaultHorizonDays is the planning horizon assumed for goals without a
// deadline. A placeholder, not a derived value.
const DefaultHorizonDays = 30

// Risk reasons, accumulated rather than first-match-wins.
const (
	RiskBacklog       = "at-risk: backlog"
	RiskLowThroughput = "at-risk: low throughput"
	RiskNoProgress    = "at-risk: no goal progress"
	RiskVelocityGap   = "at-risk: velocity gap"
)

const backlogThreshold = 3

// VelocityReport projects whether a goal will finish on time.
type VelocityReport struct {
	GoalID           string
	GoalTitle        string
	DaysRemaining    int
	WeeksRemaining   int
	TasksRemaining   int
	RequiredVelocity float64
	DoneThisWeek     int
	Reasons          []string
}

// OnTrack reports whether no risk condition matched.
func (r VelocityReport) OnTrack() bool { return len(r.Reasons) == 0 }

// PlanVelocity computes the weekly completion rate required to meet the
// goal's deadline and classifies the situation. overdueUnfinished is the
// count of this goal's overdue, not-done tasks.
func PlanVelocity(snap Snapshot, doneThisWeek, overdueUnfinished int, today time.Time) VelocityReport {
	days := DefaultHorizonDays
	if snap.EndDate != nil {
		days = task.DaysUntil(*snap.EndDate, today)
		if days < 0 {
			days = 0
		}
	}
	// Floor of one week: avoids a zero divisor and an unbounded required
	// velocity on the deadline day itself.
	weeks := int(math.Ceil(float64(days) / 7))
	if weeks < 1 {
		weeks = 1
	}

	remaining := 0
	if snap.TotalTasks != nil {
		remaining = *snap.TotalTasks
		if snap.DoneTasks != nil {
			remaining -= *snap.DoneTasks
		}
		if remaining < 0 {
			remaining = 0
		}
	}

	required := math.Round(float64(remaining)/float64(weeks)*100) / 100

	report := VelocityReport{
		GoalID:           snap.ID,
		GoalTitle:        snap.Title,
		DaysRemaining:    days,
		WeeksRemaining:   weeks,
		TasksRemaining:   remaining,
		RequiredVelocity: required,
		DoneThisWeek:     doneThisWeek,
	}

	if overdueUnfinished >= backlogThreshold {
		report.Reasons = append(report.Reasons, RiskBacklog)
	}
	// A snapshot with no computable percentage is not evidence of low
	// throughput; absence skips the check.
	if snap.ProgressPct != nil && *snap.ProgressPct < 50 {
		report.Reasons = append(report.Reasons, RiskLowThroughput)
	}
	if doneThisWeek == 0 {
		report.Reasons = append(report.Reasons, RiskNoProgress)
	}
	if required > 2*float64(doneThisWeek) {
		report.Reasons = append(report.Reasons, RiskVelocityGap)
	}
	return report
}
