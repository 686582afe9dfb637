// Package goal normalizes goal records and derives progress and velocity.
package goal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leminhq/remindbot/internal/config"
	"github.com/leminhq/remindbot/internal/store"
	"github.com/leminhq/remindbot/internal/task"
)

// Snapshot is the canonical point-in-time view of a goal. Pointer fields are
// nil when the store carried no data; "no data" renders as such and is never
// conflated with zero.
type Snapshot struct {
	ID            string
	Title         string
	Status        string
	StartDate     *time.Time
	EndDate       *time.Time
	ProgressPct   *int
	TotalTasks    *int
	DoneTasks     *int
	DoneThisWeek  *int
	DoneThisMonth *int
	CountdownText string
	DaysRemaining *int
}

// Normalize builds a Snapshot from a raw goal record. Every field degrades
// independently; a malformed property never fails the rest of the snapshot.
func Normalize(rec store.Record, props config.Properties, today time.Time) Snapshot {
	s := Snapshot{
		ID:    rec.ID,
		Title: store.Title(rec, props.Title),
	}
	if status, ok := store.SelectName(rec, props.GoalStatus); ok {
		s.Status = status
	}
	if start, ok := store.DateStart(rec, props.GoalStart); ok {
		d := start
		s.StartDate = &d
	}
	if end, ok := store.DateStart(rec, props.GoalEnd); ok {
		d := end
		s.EndDate = &d
	}

	s.TotalTasks = countField(rec, props.GoalTotal)
	s.DoneTasks = countField(rec, props.GoalDone)
	s.DoneThisWeek = countField(rec, props.GoalDoneWeek)
	s.DoneThisMonth = countField(rec, props.GoalDoneMonth)

	s.ProgressPct = resolveProgress(rec, props, s.DoneTasks, s.TotalTasks)

	s.CountdownText = countdownText(rec, props.GoalCountdown)
	if s.CountdownText == "" && s.EndDate != nil {
		d := task.DaysUntil(*s.EndDate, today)
		s.DaysRemaining = &d
	}
	return s
}

// resolveProgress applies the percentage precedence: the explicit progress
// field first, then the done/total ratio, else no data.
func resolveProgress(rec store.Record, props config.Properties, done, total *int) *int {
	if sc, ok := store.Extract(rec, props.GoalProgress); ok {
		if pct, ok := parsePercent(sc); ok {
			return &pct
		}
	}
	if total != nil {
		pct := 0
		if *total > 0 && done != nil {
			pct = clampPct(int(math.Round(float64(*done) / float64(*total) * 100)))
		}
		return &pct
	}
	if done != nil {
		// done count with no total: ratio is undefined, report 0.
		pct := 0
		return &pct
	}
	return nil
}

// parsePercent reads a percentage from whatever shape the upstream stored:
// a number, or text with an optional trailing %. Values at or below 1 are
// taken as fractions (0.6 meaning 60%).
func parsePercent(sc store.Scalar) (int, bool) {
	var raw float64
	switch sc.Kind {
	case store.KindNumber:
		raw = sc.Num
	case store.KindString:
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sc.Str), "%"))
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		raw = v
	default:
		return 0, false
	}
	if raw <= 1 {
		raw *= 100
	}
	return clampPct(int(math.Round(raw))), true
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// countField reads a non-negative count from a rollup/number/formula
// property. Negative upstream values clamp to zero.
func countField(rec store.Record, name string) *int {
	n, ok := store.Number(rec, name)
	if !ok {
		return nil
	}
	v := int(math.Round(n))
	if v < 0 {
		v = 0
	}
	return &v
}

// countdownText renders the explicit countdown field as display text with no
// parsing guarantee.
func countdownText(rec store.Record, name string) string {
	sc, ok := store.Extract(rec, name)
	if !ok {
		return ""
	}
	switch sc.Kind {
	case store.KindString:
		return sc.Str
	case store.KindNumber:
		return strconv.FormatFloat(sc.Num, 'f', -1, 64)
	case store.KindTime:
		return sc.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// NormalizeAll converts a goal record list, preserving order.
func NormalizeAll(recs []store.Record, props config.Properties, today time.Time) []Snapshot {
	out := make([]Snapshot, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Normalize(rec, props, today))
	}
	return out
}

// ProgressDisplay renders the snapshot's progress for a report line.
func (s Snapshot) ProgressDisplay() string {
	if s.ProgressPct == nil {
		return "no data"
	}
	if s.DoneTasks != nil && s.TotalTasks != nil {
		return fmt.Sprintf("%d%% (%d/%d)", *s.ProgressPct, *s.DoneTasks, *s.TotalTasks)
	}
	return fmt.Sprintf("%d%%", *s.ProgressPct)
}
