package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleInput() Input {
	return Input{
		Period:           "week",
		Date:             "22/08/2026",
		CompletedTotal:   5,
		OverdueRemaining: 2,
		Goals: []GoalSummary{
			{Title: "Learn Go", Progress: "60% (6/10)", DoneThisWeek: 2, RequiredVelocity: 1.5},
			{Title: "Ship app", Progress: "20% (2/10)", DoneThisWeek: 0, RequiredVelocity: 4,
				Reasons: []string{"at-risk: low throughput", "at-risk: no goal progress"}},
		},
	}
}

func TestDisabledAdvisorFallsBack(t *testing.T) {
	a := New(context.Background(), false, "gemini-2.0-flash")
	got := a.Analyze(context.Background(), sampleInput())
	assert.Equal(t, Fallback(sampleInput()), got)
}

func TestFallbackIsDeterministic(t *testing.T) {
	first := Fallback(sampleInput())
	second := Fallback(sampleInput())
	assert.Equal(t, first, second)
}

func TestFallbackReflectsInput(t *testing.T) {
	got := Fallback(sampleInput())
	assert.Contains(t, got, "Completed this week: 5")
	assert.Contains(t, got, "Overdue remaining: 2")
	assert.Contains(t, got, "Goals at risk: 1 of 2")
	assert.Contains(t, got, "Ship app")
	assert.NotContains(t, got, "Learn Go") // on-track goals are not called out
}

func TestFallbackAllOnTrack(t *testing.T) {
	in := sampleInput()
	in.Goals = in.Goals[:1]
	got := Fallback(in)
	assert.Contains(t, got, "Keep the current pace")
}

func TestBuildPromptIncludesReasons(t *testing.T) {
	got := BuildPrompt(sampleInput())
	assert.Contains(t, got, "report for the past week, as of 22/08/2026")
	assert.Contains(t, got, "Ship app: progress 20% (2/10)")
	assert.Contains(t, got, "at-risk: low throughput; at-risk: no goal progress")
}
