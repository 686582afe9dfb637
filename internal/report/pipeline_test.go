package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhq/remindbot/internal/advisor"
	"github.com/leminhq/remindbot/internal/config"
	"github.com/leminhq/remindbot/internal/goal"
	"github.com/leminhq/remindbot/internal/store"
)

func snapshotWithProgress(id string, pct int) goal.Snapshot {
	p := pct
	return goal.Snapshot{ID: id, Title: id, ProgressPct: &p}
}

// Saturday; the containing week runs Mon 17th through Sun 23rd.
var testToday = time.Date(2026, 8, 22, 10, 30, 0, 0, time.UTC)

type fakeStore struct {
	byDB map[string][]store.Record
	err  error
}

func (f *fakeStore) Query(_ context.Context, dbID string, _ map[string]any) ([]store.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDB[dbID], nil
}

type fakeAnalyzer struct {
	last advisor.Input
	out  string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in advisor.Input) string {
	f.last = in
	return f.out
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Notion.TasksDB = "tasks-db"
	cfg.Notion.GoalsDB = "goals-db"
	return cfg
}

func titleVal(s string) store.Value {
	return store.Value{Type: store.TypeTitle, Title: []store.TextSpan{{PlainText: s}}}
}

func checkboxVal(b bool) store.Value {
	return store.Value{Type: store.TypeCheckbox, Checkbox: &b}
}

func dateVal(s string) store.Value {
	return store.Value{Type: store.TypeDate, Date: &store.Date{Start: s}}
}

func selectVal(name string) store.Value {
	return store.Value{Type: store.TypeSelect, Select: &store.Option{Name: name}}
}

func numberVal(n float64) store.Value {
	return store.Value{Type: store.TypeNumber, Number: &n}
}

func relationVal(ids ...string) store.Value {
	rel := make([]store.Relation, 0, len(ids))
	for _, id := range ids {
		rel = append(rel, store.Relation{ID: id})
	}
	return store.Value{Type: store.TypeRelation, Relation: rel}
}

func taskRecord(id, title, due, priority string, done bool, goalIDs ...string) store.Record {
	props := map[string]store.Value{
		"Name": titleVal(title),
		"Done": checkboxVal(done),
	}
	if due != "" {
		props["Due"] = dateVal(due)
	}
	if priority != "" {
		props["Priority"] = selectVal(priority)
	}
	if len(goalIDs) > 0 {
		props["Goals"] = relationVal(goalIDs...)
	}
	return store.Record{ID: id, Properties: props}
}

func doneRecord(id, completed, due string) store.Record {
	rec := taskRecord(id, "done "+id, due, "", true)
	if completed != "" {
		rec.Properties["Completed"] = dateVal(completed)
	}
	return rec
}

func goalRecord(id, title string, total, done, doneWeek float64, end string) store.Record {
	props := map[string]store.Value{
		"Name":           titleVal(title),
		"Total tasks":    numberVal(total),
		"Done tasks":     numberVal(done),
		"Done this week": numberVal(doneWeek),
	}
	if end != "" {
		props["End"] = dateVal(end)
	}
	return store.Record{ID: id, Properties: props}
}

func TestDailySelectsAndAggregates(t *testing.T) {
	qs := &fakeStore{byDB: map[string][]store.Record{
		"tasks-db": {
			taskRecord("t1", "Pay rent", "2026-08-22", "High", false, "g1"),
			taskRecord("t2", "Stretch goal", "2026-08-24", "High", false),
			taskRecord("t3", "Too early", "2026-08-24", "Low", false),
			taskRecord("t4", "Already done", "2026-08-22", "High", true),
		},
		"goals-db": {goalRecord("g1", "Learn Go", 10, 6, 1, "")},
	}}
	p := New(qs, &fakeAnalyzer{}, testConfig())

	got := p.Daily(context.Background(), testToday)

	require.Equal(t, []string{"t1", "t2"}, got.TaskIDs)
	assert.Contains(t, got.Text, "you have 2 task(s)")
	assert.Contains(t, got.Text, "<b>Pay rent</b>")
	assert.Contains(t, got.Text, "due today")
	assert.NotContains(t, got.Text, "Too early")
	assert.NotContains(t, got.Text, "Already done")
	assert.Contains(t, got.Text, "You have 1 goal task(s)")
	assert.Contains(t, got.Text, "Goal: <b>Learn Go</b>")
	assert.Contains(t, got.Text, "60% (6/10)")
}

func TestDailyDegradesOnStoreError(t *testing.T) {
	p := New(&fakeStore{err: fmt.Errorf("boom")}, &fakeAnalyzer{}, testConfig())

	got := p.Daily(context.Background(), testToday)

	assert.Contains(t, got.Text, "you have 0 task(s)")
	assert.Empty(t, got.TaskIDs)
}

func TestListWeekWindowAndBacklog(t *testing.T) {
	qs := &fakeStore{byDB: map[string][]store.Record{
		"tasks-db": {
			taskRecord("t1", "Overdue thing", "2026-08-10", "Low", false),
			taskRecord("t2", "This week", "2026-08-23", "Medium", false),
			taskRecord("t3", "Next week", "2026-08-25", "High", false),
		},
	}}
	p := New(qs, &fakeAnalyzer{}, testConfig())

	got := p.List(context.Background(), testToday)

	require.Equal(t, []string{"t1", "t2"}, got.TaskIDs)
	assert.Contains(t, got.Text, "Tasks for week 17/08 - 23/08")
	assert.Contains(t, got.Text, "overdue by 12 days")
	assert.NotContains(t, got.Text, "Next week")
}

func TestListEmptyCelebrates(t *testing.T) {
	p := New(&fakeStore{}, &fakeAnalyzer{}, testConfig())

	got := p.List(context.Background(), testToday)

	assert.Contains(t, got.Text, "🎉")
	assert.Empty(t, got.TaskIDs)
}

func TestWeeklyStatsAndVelocity(t *testing.T) {
	qs := &fakeStore{byDB: map[string][]store.Record{
		"tasks-db": {
			// Query is filtered server-side in production; the fake returns
			// everything, so done and not-done records coexist here.
			doneRecord("d1", "2026-08-19", "2026-08-20"),
			doneRecord("d2", "2026-08-21", "2026-08-15"),
			doneRecord("d3", "2026-08-01", ""),
			doneRecord("d4", "", ""),
			taskRecord("o1", "Overdue open", "2026-08-10", "Low", false, "g1"),
		},
		// 13 days to the deadline: 2 weeks, 6 remaining, 3.00/week required.
		"goals-db": {goalRecord("g1", "Learn Go", 10, 4, 2, "2026-09-04")},
	}}
	analyzer := &fakeAnalyzer{out: "model overview text"}
	p := New(qs, analyzer, testConfig())

	got := p.Weekly(context.Background(), testToday)

	assert.Contains(t, got.Text, "✔ Completed: 2")
	assert.Contains(t, got.Text, "Completed late: 1")
	assert.Contains(t, got.Text, "Overdue, not done: 1")
	assert.Contains(t, got.Text, "date unknown: 1")
	assert.Contains(t, got.Text, "Learn Go")
	assert.Contains(t, got.Text, "40% (4/10)")
	assert.Contains(t, got.Text, "required pace: 3.00/week")
	assert.Contains(t, got.Text, "⚠")
	assert.Contains(t, got.Text, "Focus next week: <b>Learn Go</b>")
	assert.Contains(t, got.Text, "model overview text")

	// The analyzer sees the same numbers the report prints.
	assert.Equal(t, "week", analyzer.last.Period)
	assert.Equal(t, 3, analyzer.last.CompletedTotal) // 2 dated + 1 unknown
	assert.Equal(t, 1, analyzer.last.OverdueRemaining)
	require.Len(t, analyzer.last.Goals, 1)
	assert.Equal(t, "Learn Go", analyzer.last.Goals[0].Title)
	assert.InDelta(t, 3.0, analyzer.last.Goals[0].RequiredVelocity, 1e-9)
}

func TestMonthlyCountsAndBars(t *testing.T) {
	qs := &fakeStore{byDB: map[string][]store.Record{
		"tasks-db": {
			doneRecord("d1", "2026-08-19", ""),
			doneRecord("d2", "2026-08-01", ""),
			doneRecord("d3", "2026-07-31", ""),
			doneRecord("d4", "", ""),
		},
		"goals-db": {goalRecord("g1", "Learn Go", 10, 6, 0, "")},
	}}
	p := New(qs, &fakeAnalyzer{}, testConfig())

	got := p.Monthly(context.Background(), testToday)

	assert.Contains(t, got.Text, "Monthly report 08/2026")
	assert.Contains(t, got.Text, "Completed this month: 2")
	assert.Contains(t, got.Text, "date unknown: 1")
	assert.Contains(t, got.Text, "60% (6/10)")
	assert.Contains(t, got.Text, "[")
}

func TestTopByProgressOrdersAndCaps(t *testing.T) {
	var goals []plannedGoal
	for i := 0; i < 8; i++ {
		pct := i * 10
		goals = append(goals, plannedGoal{snap: snapshotWithProgress(fmt.Sprintf("g%d", i), pct)})
	}

	top := topByProgress(goals)

	require.Len(t, top, topGoalCount)
	assert.Equal(t, "g7", top[0].snap.ID)
	assert.Equal(t, "g2", top[len(top)-1].snap.ID)
	// Input order is untouched.
	assert.Equal(t, "g0", goals[0].snap.ID)
}

func TestTargetGoalNearestUnfinishedDeadline(t *testing.T) {
	near := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	far := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	hundred := 100

	done := snapshotWithProgress("done", 0)
	done.ProgressPct = &hundred
	done.EndDate = &near

	behind := snapshotWithProgress("behind", 20)
	behind.EndDate = &far

	urgent := snapshotWithProgress("urgent", 50)
	urgent.EndDate = &near

	noDeadline := snapshotWithProgress("open-ended", 10)

	got := targetGoal([]plannedGoal{{snap: done}, {snap: behind}, {snap: urgent}, {snap: noDeadline}})

	require.NotNil(t, got)
	assert.Equal(t, "urgent", got.ID)
}

func TestProgressBarBounds(t *testing.T) {
	assert.Equal(t, "[------------------] 0%", ProgressBar(0))
	assert.Equal(t, "[██████████████████] 100%", ProgressBar(100))
	assert.Equal(t, "[██████████████████] 100%", ProgressBar(150))
	assert.Equal(t, "[------------------] 0%", ProgressBar(-5))
	assert.Contains(t, ProgressBar(60), "] 60%")
}

func TestDueStatusWording(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, "due today", DueStatus(day("2026-08-22"), testToday))
	assert.Equal(t, "overdue by 3 days", DueStatus(day("2026-08-19"), testToday))
	assert.Equal(t, "2 days remaining", DueStatus(day("2026-08-24"), testToday))
}
