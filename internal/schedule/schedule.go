// Package schedule fires the periodic reports at their configured local
// times.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is one scheduled action. It receives the local time the slot fired for.
type Job func(ctx context.Context, now time.Time)

// Entry pairs a job with its next-fire computation. Next must return a time
// strictly after its argument.
type Entry struct {
	Name string
	Next func(after time.Time) time.Time
	Run  Job
}

// Scheduler runs entries on their own timers until the context ends. Slots
// are recomputed after every firing, so a missed slot (process asleep,
// clock jump) fires at most once and then realigns.
type Scheduler struct {
	loc     *time.Location
	entries []Entry
	now     func() time.Time
}

// New creates a scheduler in the given location.
func New(loc *time.Location, entries ...Entry) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{loc: loc, entries: entries, now: time.Now}
}

// Run blocks until ctx is done, firing each entry at its slots.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, e := range s.entries {
		wg.Add(1)
		go func(e Entry) {
			defer wg.Done()
			s.runEntry(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (s *Scheduler) runEntry(ctx context.Context, e Entry) {
	for {
		now := s.now().In(s.loc)
		next := e.Next(now)
		log.Debug().Str("job", e.Name).Time("next", next).Msg("scheduled")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			fired := s.now().In(s.loc)
			log.Info().Str("job", e.Name).Msg("running scheduled job")
			e.Run(ctx, fired)
		}
	}
}

// NextDaily returns the next occurrence of hh:mm after t, in t's location.
func NextDaily(t time.Time, hour, minute int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly returns the next Sunday at hh:00 after t.
func NextWeekly(t time.Time, hour int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	for next.Weekday() != time.Sunday || !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextMonthly returns the next last-day-of-month at hh:00 after t. The slot
// is defined as the day whose tomorrow is the 1st.
func NextMonthly(t time.Time, hour int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	for next.AddDate(0, 0, 1).Day() != 1 || !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
