package task

import "time"

// Mode names a report window.
type Mode string

// Report modes.
const (
	ModeDaily   Mode = "daily"
	ModeWeekly  Mode = "weekly"
	ModeMonthly Mode = "monthly"
)

// Daily lookahead thresholds: a higher priority surfaces a task further
// ahead of its deadline.
const (
	lookaheadHigh   = 2
	lookaheadMedium = 1
	lookaheadLow    = 0
)

// Select returns the not-done tasks to surface for the given mode, preserving
// input order. Order preservation is load-bearing: display indices handed to
// the index cache must match a later mark-done command.
func Select(tasks []Task, today time.Time, mode Mode) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Done {
			continue
		}
		if included(t, today, mode) {
			out = append(out, t)
		}
	}
	return out
}

func included(t Task, today time.Time, mode Mode) bool {
	switch mode {
	case ModeDaily:
		if t.DueDate == nil {
			return false
		}
		return DaysUntil(*t.DueDate, today) <= lookahead(t.Priority)
	case ModeWeekly:
		if t.DueDate == nil {
			return false
		}
		start, end := WeekRange(today)
		due := truncateDate(*t.DueDate)
		return due.Before(start) || !due.After(end)
	case ModeMonthly:
		if t.DueDate == nil {
			return false
		}
		first, last := MonthRange(today)
		due := truncateDate(*t.DueDate)
		return due.Before(first) || !due.After(last)
	default:
		return false
	}
}

// lookahead returns the inclusive days-until-due threshold for a priority.
// Unknown priorities get Medium behavior.
func lookahead(p Priority) int {
	switch p {
	case PriorityHigh:
		return lookaheadHigh
	case PriorityLow:
		return lookaheadLow
	default:
		return lookaheadMedium
	}
}
