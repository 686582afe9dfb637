// Package task defines the task model and the report selection rules.
package task

import (
	"strings"
	"time"

	"github.com/leminhq/remindbot/internal/config"
	"github.com/leminhq/remindbot/internal/store"
)

// Priority buckets a task's urgency. Unknown labels behave like Medium for
// display but keep their original text.
type Priority int

// Priority levels.
const (
	PriorityUnknown Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// ParsePriority maps the free-text labels seen upstream (English and the
// original database's Vietnamese) onto a Priority.
func ParsePriority(label string) Priority {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high", "urgent", "cao", "khẩn cấp":
		return PriorityHigh
	case "medium", "normal", "vừa", "vua", "trung bình":
		return PriorityMedium
	case "low", "thấp", "thap":
		return PriorityLow
	default:
		return PriorityUnknown
	}
}

// Task is the normalized view of one task record.
type Task struct {
	ID            string
	Title         string
	Done          bool
	DueDate       *time.Time
	CompletedDate *time.Time
	Priority      Priority
	PriorityLabel string
	GoalIDs       []string
	Note          string
	TypeLabel     string
}

// FromRecord builds a Task from a raw record using the configured property
// names. Missing or malformed fields degrade to their absence values.
func FromRecord(rec store.Record, props config.Properties) Task {
	t := Task{
		ID:    rec.ID,
		Title: store.Title(rec, props.Title),
	}
	if done, ok := store.Checkbox(rec, props.Done); ok {
		t.Done = done
	}
	if due, ok := store.DateStart(rec, props.Due); ok {
		d := due
		t.DueDate = &d
	}
	if comp, ok := store.DateStart(rec, props.Completed); ok {
		c := comp
		t.CompletedDate = &c
	}
	if label, ok := store.SelectName(rec, props.Priority); ok {
		t.PriorityLabel = label
		t.Priority = ParsePriority(label)
	}
	if typ, ok := store.SelectName(rec, props.Type); ok {
		t.TypeLabel = typ
	}
	if note, ok := store.Text(rec, props.Note); ok {
		t.Note = note
	}
	t.GoalIDs = store.RelationIDs(rec, props.GoalRelation)
	return t
}

// FromRecords converts a record list, preserving order.
func FromRecords(recs []store.Record, props config.Properties) []Task {
	out := make([]Task, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromRecord(rec, props))
	}
	return out
}

// DaysUntil returns due - today in whole days on date boundaries, ignoring
// any time component. Negative means overdue.
func DaysUntil(due, today time.Time) int {
	d := truncateDate(due)
	t := truncateDate(today)
	return int(d.Sub(t).Hours() / 24)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekRange returns the Monday and Sunday of the calendar week containing d.
func WeekRange(d time.Time) (time.Time, time.Time) {
	day := truncateDate(d)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started the previous Monday
	}
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the calendar month containing d.
func MonthRange(d time.Time) (time.Time, time.Time) {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
