package goal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhq/remindbot/internal/task"
)

func snapshot(total, done int, end *time.Time, pct *int) Snapshot {
	return Snapshot{
		ID:          "goal-1",
		Title:       "Learn Go",
		TotalTasks:  &total,
		DoneTasks:   &done,
		EndDate:     end,
		ProgressPct: pct,
	}
}

func TestPlanVelocityScenario(t *testing.T) {
	// Spec scenario: deadline in 13 days, 10 total, 4 done.
	end := today.AddDate(0, 0, 13)
	report := PlanVelocity(snapshot(10, 4, &end, ptr(40)), 2, 0, today)

	assert.Equal(t, 13, report.DaysRemaining)
	assert.Equal(t, 2, report.WeeksRemaining)
	assert.Equal(t, 6, report.TasksRemaining)
	assert.Equal(t, 3.0, report.RequiredVelocity)
}

func TestPlanVelocityDeadlineDayFloorsToOneWeek(t *testing.T) {
	end := today
	report := PlanVelocity(snapshot(10, 5, &end, ptr(50)), 1, 0, today)
	assert.Equal(t, 0, report.DaysRemaining)
	assert.Equal(t, 1, report.WeeksRemaining)
	assert.Equal(t, 5.0, report.RequiredVelocity)
}

func TestPlanVelocityPastDeadlineClampsDays(t *testing.T) {
	end := today.AddDate(0, 0, -10)
	report := PlanVelocity(snapshot(4, 1, &end, ptr(25)), 1, 0, today)
	assert.Equal(t, 0, report.DaysRemaining)
	assert.Equal(t, 1, report.WeeksRemaining)
}

func TestPlanVelocityDefaultHorizon(t *testing.T) {
	report := PlanVelocity(snapshot(8, 0, nil, ptr(0)), 1, 0, today)
	assert.Equal(t, DefaultHorizonDays, report.DaysRemaining)
	assert.Equal(t, 5, report.WeeksRemaining) // ceil(30/7)
	assert.Equal(t, 1.6, report.RequiredVelocity)
}

func TestPlanVelocityAccumulatesAllReasons(t *testing.T) {
	end := today.AddDate(0, 0, 7)
	// Backlog of 3, 20% complete, nothing done this week, required velocity
	// far above recent output: all four reasons must appear.
	report := PlanVelocity(snapshot(10, 2, &end, ptr(20)), 0, 3, today)

	assert.Equal(t, []string{
		RiskBacklog,
		RiskLowThroughput,
		RiskNoProgress,
		RiskVelocityGap,
	}, report.Reasons)
	assert.False(t, report.OnTrack())
}

func TestPlanVelocityOnTrack(t *testing.T) {
	end := today.AddDate(0, 0, 28)
	report := PlanVelocity(snapshot(10, 6, &end, ptr(60)), 2, 0, today)
	assert.True(t, report.OnTrack())
}

func TestPlanVelocityAbsentProgressSkipsThroughputCheck(t *testing.T) {
	end := today.AddDate(0, 0, 28)
	snap := snapshot(10, 6, &end, nil)
	report := PlanVelocity(snap, 2, 0, today)
	assert.NotContains(t, report.Reasons, RiskLowThroughput)
}

func TestPlanVelocityRoundsToTwoDecimals(t *testing.T) {
	end := today.AddDate(0, 0, 20) // 3 weeks
	report := PlanVelocity(snapshot(10, 3, &end, ptr(30)), 4, 0, today)
	assert.Equal(t, 2.33, report.RequiredVelocity)
}

func TestAggregateFanOut(t *testing.T) {
	shared := task.Task{ID: "t1", Title: "shared", GoalIDs: []string{"g1", "g2"}}
	only := task.Task{ID: "t2", Title: "only g2", GoalIDs: []string{"g2"}}
	orphan := task.Task{ID: "t3", Title: "no goal"}

	snaps := []Snapshot{
		{ID: "g1", Title: "First"},
		{ID: "g2", Title: "Second"},
		{ID: "g3", Title: "Empty"},
	}

	blocks, total := Aggregate([]task.Task{shared, only, orphan}, snaps)

	require.Len(t, blocks, 2)
	assert.Equal(t, "g1", blocks[0].Goal.ID)
	assert.Len(t, blocks[0].Tasks, 1)
	assert.Equal(t, "g2", blocks[1].Goal.ID)
	assert.Len(t, blocks[1].Tasks, 2)
	// A task under two goals counts twice: touches, not unique tasks.
	assert.Equal(t, 3, total)
}

func TestAggregateSingleTaskTwoGoals(t *testing.T) {
	// Spec scenario: one selected task linked to two goals appears in both
	// blocks with total_count = 2.
	shared := task.Task{ID: "t1", GoalIDs: []string{"g1", "g2"}}
	snaps := []Snapshot{{ID: "g1"}, {ID: "g2"}}

	blocks, total := Aggregate([]task.Task{shared}, snaps)
	require.Len(t, blocks, 2)
	assert.Equal(t, 2, total)
}

func TestAggregateEmptyInputs(t *testing.T) {
	blocks, total := Aggregate(nil, nil)
	assert.Empty(t, blocks)
	assert.Zero(t, total)
}

func TestAggregateBlockOrderFollowsGoalList(t *testing.T) {
	// Task order would put g2 first; block order must follow the goal list.
	t1 := task.Task{ID: "t1", GoalIDs: []string{"g2"}}
	t2 := task.Task{ID: "t2", GoalIDs: []string{"g1"}}
	snaps := []Snapshot{{ID: "g1"}, {ID: "g2"}}

	blocks, _ := Aggregate([]task.Task{t1, t2}, snaps)
	require.Len(t, blocks, 2)
	assert.Equal(t, "g1", blocks[0].Goal.ID)
	assert.Equal(t, "g2", blocks[1].Goal.ID)
}
