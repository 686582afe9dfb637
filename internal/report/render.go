// Package report assembles the daily, weekly and monthly report messages
// through an explicit pipeline: collect, normalize, select, aggregate, plan,
// render.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/leminhq/remindbot/internal/goal"
	"github.com/leminhq/remindbot/internal/task"
)

const (
	progressBarLen = 18
	dateFormat     = "02/01/2006"
	shortDate      = "02/01"
)

// ProgressBar renders an 18-cell bar for a clamped percentage.
func ProgressBar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := (progressBarLen*pct + 50) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("-", progressBarLen-filled)
	return fmt.Sprintf("[%s] %d%%", bar, pct)
}

// DueStatus renders the status annotation for a due date. It is a pure
// function of today - due in days.
func DueStatus(due, today time.Time) string {
	overdue := task.DaysUntil(today, due)
	switch {
	case overdue > 0:
		return fmt.Sprintf("overdue by %d days", overdue)
	case overdue == 0:
		return "due today"
	default:
		return fmt.Sprintf("%d days remaining", -overdue)
	}
}

// dueSymbol picks the glyph for a task's urgency.
func dueSymbol(t task.Task, today time.Time) string {
	if t.DueDate == nil {
		return "🟡"
	}
	switch overdue := task.DaysUntil(today, *t.DueDate); {
	case overdue > 0:
		return "🔴"
	case overdue == 0:
		return "🟡"
	default:
		return "🟢"
	}
}

// FormatTaskLine renders one listing line: ordinal, glyph, title, priority
// label, due date, note, and the status annotation.
func FormatTaskLine(i int, t task.Task, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s <b>%s</b>", i, dueSymbol(t, today), t.Title)
	if t.PriorityLabel != "" {
		fmt.Fprintf(&b, " — priority: %s", t.PriorityLabel)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, " — due %s", t.DueDate.Format(dateFormat))
	}
	if t.Note != "" {
		fmt.Fprintf(&b, "\n  %s", t.Note)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, "\n  ↳ %s", DueStatus(*t.DueDate, today))
	}
	return b.String()
}

// formatGoalBlock renders one goal's section of the daily report.
func formatGoalBlock(block goal.Block, today time.Time) []string {
	lines := []string{fmt.Sprintf("🔗 Goal: <b>%s</b> — %s", block.Goal.Title, countdownDisplay(block.Goal))}
	if block.Goal.ProgressPct != nil {
		lines = append(lines, fmt.Sprintf("   → Progress: %s %s", block.Goal.ProgressDisplay(), ProgressBar(*block.Goal.ProgressPct)))
	} else {
		lines = append(lines, "   → Progress: no data")
	}
	for _, t := range block.Tasks {
		line := fmt.Sprintf("   - %s %s", dueSymbol(t, today), t.Title)
		if t.PriorityLabel != "" {
			line += fmt.Sprintf(" — priority: %s", t.PriorityLabel)
		}
		if t.DueDate != nil {
			line += fmt.Sprintf("\n     ↳ %s", DueStatus(*t.DueDate, today))
		}
		lines = append(lines, line)
	}
	return lines
}

// countdownDisplay prefers the explicit countdown text and falls back to the
// computed days-remaining.
func countdownDisplay(s goal.Snapshot) string {
	if s.CountdownText != "" {
		return s.CountdownText
	}
	if s.DaysRemaining != nil {
		switch d := *s.DaysRemaining; {
		case d > 0:
			return fmt.Sprintf("%d days left", d)
		case d == 0:
			return "due today"
		default:
			return fmt.Sprintf("overdue by %d days", -d)
		}
	}
	return "no deadline"
}
