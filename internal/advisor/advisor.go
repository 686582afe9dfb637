// Package advisor asks a language model to analyze goal performance and
// propose a plan, degrading to a deterministic local summary when the model
// is unavailable.
package advisor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// GoalSummary is one goal's structured input to the advisory prompt. The
// same values feed the fallback template, so advisory and fallback always
// describe the same data.
type GoalSummary struct {
	Title            string
	Progress         string
	DoneThisWeek     int
	RequiredVelocity float64
	Reasons          []string
}

// Input is the structured performance summary the advisory runs on.
// Period is the report window noun, "week" or "month".
type Input struct {
	Period           string
	Date             string
	CompletedTotal   int
	OverdueRemaining int
	Goals            []GoalSummary
}

// Advisor wraps the model client. A nil inner client means the advisory is
// disabled and every call degrades to the fallback.
type Advisor struct {
	client *genai.Client
	model  string
}

// New constructs an Advisor. When enabled is false or no API key is
// configured, the returned Advisor is a functioning no-op that always falls
// back locally.
func New(ctx context.Context, enabled bool, model string) *Advisor {
	a := &Advisor{model: model}
	if !enabled {
		return a
	}
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		log.Warn().Msg("advisor enabled but GEMINI_API_KEY is not set, using local summaries")
		return a
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Warn().Err(err).Msg("advisor client init failed, using local summaries")
		return a
	}
	a.client = client
	return a
}

// Analyze returns the model's free-text analysis of the input, or the
// deterministic fallback when the advisory is disabled or keeps failing.
func (a *Advisor) Analyze(ctx context.Context, in Input) string {
	if a.client == nil {
		return Fallback(in)
	}

	prompt := BuildPrompt(in)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
		if err == nil {
			if text := strings.TrimSpace(resp.Text()); text != "" {
				return text
			}
			err = fmt.Errorf("model returned empty output")
		}
		lastErr = err
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				log.Warn().Err(ctx.Err()).Msg("advisor call canceled, using local summary")
				return Fallback(in)
			case <-time.After(retryDelay):
			}
		}
	}
	log.Warn().Err(lastErr).Int("attempts", maxAttempts).Msg("advisor call failed, using local summary")
	return Fallback(in)
}

// BuildPrompt renders the advisory prompt from the structured input.
func BuildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a pragmatic personal productivity coach. Here is my report for the past %s, as of %s.\n\n", in.Period, in.Date)
	fmt.Fprintf(&b, "Tasks completed this %s: %d\n", in.Period, in.CompletedTotal)
	fmt.Fprintf(&b, "Overdue tasks remaining: %d\n\n", in.OverdueRemaining)
	b.WriteString("Goals:\n")
	for _, g := range in.Goals {
		fmt.Fprintf(&b, "- %s: progress %s, done this week %d, required weekly pace %.2f", g.Title, g.Progress, g.DoneThisWeek, g.RequiredVelocity)
		if len(g.Reasons) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(g.Reasons, "; "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nIn under 120 words, assess the %s and propose a concrete plan for the next one.", in.Period)
	return b.String()
}

// Fallback renders a fixed template over the same structured input the
// prompt uses. Deterministic: identical input yields identical text.
func Fallback(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>Summary</b>\n")
	fmt.Fprintf(&b, "Completed this %s: %d. Overdue remaining: %d.\n", in.Period, in.CompletedTotal, in.OverdueRemaining)
	atRisk := 0
	for _, g := range in.Goals {
		if len(g.Reasons) > 0 {
			atRisk++
		}
	}
	if len(in.Goals) > 0 {
		fmt.Fprintf(&b, "Goals at risk: %d of %d.\n", atRisk, len(in.Goals))
	}
	for _, g := range in.Goals {
		if len(g.Reasons) == 0 {
			continue
		}
		fmt.Fprintf(&b, "• %s — %s; aim for %.2f tasks/week.\n", g.Title, strings.Join(g.Reasons, "; "), g.RequiredVelocity)
	}
	if atRisk == 0 {
		b.WriteString("Keep the current pace going into next week.")
	} else {
		b.WriteString("Start next week with the overdue backlog, oldest first.")
	}
	return b.String()
}
