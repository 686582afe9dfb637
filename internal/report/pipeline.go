package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leminhq/remindbot/internal/advisor"
	"github.com/leminhq/remindbot/internal/config"
	"github.com/leminhq/remindbot/internal/goal"
	"github.com/leminhq/remindbot/internal/store"
	"github.com/leminhq/remindbot/internal/task"
)

// topGoalCount limits how many goals the weekly/monthly summaries list.
const topGoalCount = 6

// Querier is the record-store dependency of the pipeline.
type Querier interface {
	Query(ctx context.Context, dbID string, filter map[string]any) ([]store.Record, error)
}

// Analyzer produces the advisory text for the weekly overview.
type Analyzer interface {
	Analyze(ctx context.Context, in advisor.Input) string
}

// Report is a rendered message plus the ordered task ids behind its listing,
// destined for the index cache.
type Report struct {
	Text    string
	TaskIDs []string
}

// Pipeline builds reports from the record store. Each builder runs the same
// explicit stages; a store failure at the collect stage degrades to an empty
// result set rather than aborting the report.
type Pipeline struct {
	store    Querier
	analyzer Analyzer
	cfg      config.Config
}

// New creates a report pipeline.
func New(querier Querier, analyzer Analyzer, cfg config.Config) *Pipeline {
	return &Pipeline{store: querier, analyzer: analyzer, cfg: cfg}
}

// --- collect stages -------------------------------------------------------

// collectTasks queries the not-done tasks relevant to a mode and normalizes
// them. The query is a superset window; exact inclusion is task.Select's job.
func (p *Pipeline) collectTasks(ctx context.Context, today time.Time, mode task.Mode) []task.Task {
	props := p.cfg.Properties

	var dueWindow map[string]any
	switch mode {
	case task.ModeDaily:
		// Widest daily lookahead is two days for High priority.
		dueWindow = store.DateOnOrBefore(props.Due, today.AddDate(0, 0, 2))
	case task.ModeWeekly:
		start, end := task.WeekRange(today)
		dueWindow = store.Or(store.DateBetween(props.Due, start, end), store.DateBefore(props.Due, today))
	case task.ModeMonthly:
		first, last := task.MonthRange(today)
		dueWindow = store.Or(store.DateBetween(props.Due, first, last), store.DateBefore(props.Due, today))
	}

	parts := []map[string]any{store.CheckboxEquals(props.Done, false), dueWindow}
	if props.Active != "" {
		parts = append([]map[string]any{store.CheckboxEquals(props.Active, true)}, parts...)
	}

	recs, err := p.store.Query(ctx, p.cfg.Notion.TasksDB, store.And(parts...))
	if err != nil {
		log.Warn().Err(err).Str("mode", string(mode)).Msg("task query failed, reporting on empty set")
		return nil
	}
	return task.FromRecords(recs, props)
}

// collectDone queries every completed task. Completion windows are derived
// locally so that done tasks without a completion date still count toward
// the totals (completed on an unknown date).
func (p *Pipeline) collectDone(ctx context.Context) []task.Task {
	filter := store.And(store.CheckboxEquals(p.cfg.Properties.Done, true))
	recs, err := p.store.Query(ctx, p.cfg.Notion.TasksDB, filter)
	if err != nil {
		log.Warn().Err(err).Msg("completed-task query failed, reporting on empty set")
		return nil
	}
	return task.FromRecords(recs, p.cfg.Properties)
}

// collectGoals queries and normalizes every goal record. A single malformed
// record degrades field-by-field inside Normalize and never blocks the rest.
func (p *Pipeline) collectGoals(ctx context.Context, today time.Time) []goal.Snapshot {
	if p.cfg.Notion.GoalsDB == "" {
		return nil
	}
	recs, err := p.store.Query(ctx, p.cfg.Notion.GoalsDB, nil)
	if err != nil {
		log.Warn().Err(err).Msg("goal query failed, reporting on empty set")
		return nil
	}
	return goal.NormalizeAll(recs, p.cfg.Properties, today)
}

// --- daily ----------------------------------------------------------------

// Daily builds the daily reminder: today's selected tasks plus a per-goal
// section for the goals those tasks belong to.
func (p *Pipeline) Daily(ctx context.Context, today time.Time) Report {
	collected := p.collectTasks(ctx, today, task.ModeDaily)
	selected := task.Select(collected, today, task.ModeDaily)
	snapshots := p.collectGoals(ctx, today)
	blocks, total := goal.Aggregate(selected, snapshots)

	lines := []string{fmt.Sprintf("🔔 <b>Today %s you have %d task(s)</b>", today.Format(dateFormat), len(selected)), ""}
	for i, t := range selected {
		lines = append(lines, FormatTaskLine(i+1, t, today))
	}
	if total > 0 {
		lines = append(lines, "", fmt.Sprintf("🔗 You have %d goal task(s)", total))
		for _, block := range blocks {
			lines = append(lines, formatGoalBlock(block, today)...)
		}
	}

	return Report{Text: strings.Join(lines, "\n"), TaskIDs: taskIDs(selected)}
}

// List builds the /check listing: this week's tasks plus the overdue backlog.
func (p *Pipeline) List(ctx context.Context, today time.Time) Report {
	collected := p.collectTasks(ctx, today, task.ModeWeekly)
	selected := task.Select(collected, today, task.ModeWeekly)
	if len(selected) == 0 {
		return Report{Text: "🎉 Nothing due this week and no overdue tasks."}
	}

	start, end := task.WeekRange(today)
	lines := []string{fmt.Sprintf("🔔 <b>Tasks for week %s - %s</b>", start.Format(shortDate), end.Format(shortDate)), ""}
	for i, t := range selected {
		lines = append(lines, FormatTaskLine(i+1, t, today))
	}
	return Report{Text: strings.Join(lines, "\n"), TaskIDs: taskIDs(selected)}
}

// --- weekly ---------------------------------------------------------------

// weeklyStats is the collect/normalize result of the weekly stages.
type weeklyStats struct {
	doneThisWeek    int
	doneUnknownDate int
	overdueDone     int
	overdueOpen     []task.Task
}

func (p *Pipeline) weeklyStats(ctx context.Context, today time.Time) weeklyStats {
	var s weeklyStats
	start, end := task.WeekRange(today)

	for _, t := range p.collectDone(ctx) {
		if t.CompletedDate == nil {
			s.doneUnknownDate++
			continue
		}
		comp := *t.CompletedDate
		if task.DaysUntil(comp, start) >= 0 && task.DaysUntil(comp, end) <= 0 {
			s.doneThisWeek++
			if t.DueDate != nil && task.DaysUntil(comp, *t.DueDate) > 0 {
				s.overdueDone++
			}
		}
	}

	collected := p.collectTasks(ctx, today, task.ModeWeekly)
	for _, t := range task.Select(collected, today, task.ModeWeekly) {
		if t.DueDate != nil && task.DaysUntil(*t.DueDate, today) < 0 {
			s.overdueOpen = append(s.overdueOpen, t)
		}
	}
	return s
}

// Weekly builds the weekly performance report, including velocity planning
// per goal and the advisory overview.
func (p *Pipeline) Weekly(ctx context.Context, today time.Time) Report {
	stats := p.weeklyStats(ctx, today)
	snapshots := p.collectGoals(ctx, today)

	// Plan velocity for the goals that track task counts.
	var tracked []plannedGoal
	for _, s := range snapshots {
		if s.TotalTasks == nil {
			continue
		}
		tracked = append(tracked, plannedGoal{
			snap: s,
			plan: goal.PlanVelocity(s, intOrZero(s.DoneThisWeek), overdueFor(s.ID, stats.overdueOpen), today),
		})
	}

	lines := []string{fmt.Sprintf("📊 <b>Weekly report, %s</b>", today.Format(dateFormat)), ""}
	lines = append(lines,
		"🔥 <b>This week</b>",
		fmt.Sprintf("• ✔ Completed: %d", stats.doneThisWeek),
		fmt.Sprintf("• ⏳ Completed late: %d", stats.overdueDone),
		fmt.Sprintf("• 🆘 Overdue, not done: %d", len(stats.overdueOpen)),
	)
	if stats.doneUnknownDate > 0 {
		lines = append(lines, fmt.Sprintf("• ❔ Completed, date unknown: %d", stats.doneUnknownDate))
	}

	if len(tracked) > 0 {
		lines = append(lines, "", "🎯 <b>Top goals</b>")
		for _, pg := range topByProgress(tracked) {
			lines = append(lines, fmt.Sprintf("• %s", pg.snap.Title))
			lines = append(lines, fmt.Sprintf("  → Progress: %s %s", pg.snap.ProgressDisplay(), ProgressBar(intOrZero(pg.snap.ProgressPct))))
			lines = append(lines, fmt.Sprintf("  → Done this week: %d, required pace: %.2f/week", pg.plan.DoneThisWeek, pg.plan.RequiredVelocity))
			if !pg.plan.OnTrack() {
				lines = append(lines, fmt.Sprintf("  → ⚠ %s", strings.Join(pg.plan.Reasons, "; ")))
			}
		}
	}

	if focus := targetGoal(tracked); focus != nil {
		lines = append(lines, "", fmt.Sprintf("🎯 Focus next week: <b>%s</b>, %s", focus.Title, countdownDisplay(*focus)))
	}

	overview := p.analyzer.Analyze(ctx, advisoryInput("week", today, stats.doneThisWeek+stats.doneUnknownDate, len(stats.overdueOpen), tracked))
	lines = append(lines, "", "📈 <b>Overview</b>", overview)

	return Report{Text: strings.Join(lines, "\n")}
}

// --- monthly ----------------------------------------------------------------

// Monthly builds the month-end summary.
func (p *Pipeline) Monthly(ctx context.Context, today time.Time) Report {
	first, last := task.MonthRange(today)

	doneThisMonth := 0
	unknownDate := 0
	for _, t := range p.collectDone(ctx) {
		if t.CompletedDate == nil {
			unknownDate++
			continue
		}
		comp := *t.CompletedDate
		if task.DaysUntil(comp, first) >= 0 && task.DaysUntil(comp, last) <= 0 {
			doneThisMonth++
		}
	}

	snapshots := p.collectGoals(ctx, today)
	var tracked []plannedGoal
	for _, s := range snapshots {
		if s.TotalTasks != nil {
			tracked = append(tracked, plannedGoal{snap: s})
		}
	}

	lines := []string{fmt.Sprintf("📅 <b>Monthly report %s</b>", today.Format("01/2006")), ""}
	lines = append(lines, fmt.Sprintf("• ✔ Completed this month: %d", doneThisMonth))
	if unknownDate > 0 {
		lines = append(lines, fmt.Sprintf("• ❔ Completed, date unknown: %d", unknownDate))
	}
	if len(tracked) > 0 {
		lines = append(lines, "", "🎯 Goal progress:")
		for _, pg := range topByProgress(tracked) {
			lines = append(lines, fmt.Sprintf("• %s → %s %s", pg.snap.Title, pg.snap.ProgressDisplay(), ProgressBar(intOrZero(pg.snap.ProgressPct))))
		}
	}
	return Report{Text: strings.Join(lines, "\n")}
}

// --- helpers ----------------------------------------------------------------

func taskIDs(tasks []task.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func overdueFor(goalID string, overdue []task.Task) int {
	n := 0
	for _, t := range overdue {
		for _, id := range t.GoalIDs {
			if id == goalID {
				n++
				break
			}
		}
	}
	return n
}

// plannedGoal pairs a goal snapshot with its velocity plan so that sorting
// for display keeps the two aligned.
type plannedGoal struct {
	snap goal.Snapshot
	plan goal.VelocityReport
}

// topByProgress returns up to topGoalCount goals ordered by progress
// descending, ties keeping input order.
func topByProgress(goals []plannedGoal) []plannedGoal {
	sorted := make([]plannedGoal, len(goals))
	copy(sorted, goals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return intOrZero(sorted[i].snap.ProgressPct) > intOrZero(sorted[j].snap.ProgressPct)
	})
	if len(sorted) > topGoalCount {
		sorted = sorted[:topGoalCount]
	}
	return sorted
}

// targetGoal picks the unfinished goal with the nearest deadline.
func targetGoal(goals []plannedGoal) *goal.Snapshot {
	var best *goal.Snapshot
	for i := range goals {
		s := &goals[i].snap
		if s.EndDate == nil {
			continue
		}
		if s.ProgressPct != nil && *s.ProgressPct >= 100 {
			continue
		}
		if best == nil || s.EndDate.Before(*best.EndDate) {
			best = s
		}
	}
	return best
}

// advisoryInput assembles the structured summary shared by the advisory
// prompt and the local fallback.
func advisoryInput(period string, today time.Time, completed, overdue int, tracked []plannedGoal) advisor.Input {
	in := advisor.Input{
		Period:           period,
		Date:             today.Format(dateFormat),
		CompletedTotal:   completed,
		OverdueRemaining: overdue,
	}
	for _, pg := range tracked {
		in.Goals = append(in.Goals, advisor.GoalSummary{
			Title:            pg.snap.Title,
			Progress:         pg.snap.ProgressDisplay(),
			DoneThisWeek:     pg.plan.DoneThisWeek,
			RequiredVelocity: pg.plan.RequiredVelocity,
			Reasons:          pg.plan.Reasons,
		})
	}
	return in
}
