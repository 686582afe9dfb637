package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leminhq/remindbot/internal/advisor"
	"github.com/leminhq/remindbot/internal/cache"
	"github.com/leminhq/remindbot/internal/config"
	"github.com/leminhq/remindbot/internal/report"
	"github.com/leminhq/remindbot/internal/store"
	"github.com/leminhq/remindbot/internal/telegram"
)

// app bundles the wired dependencies shared by the serve and report commands.
type app struct {
	cfg      config.Config
	loc      *time.Location
	store    *store.Client
	notifier *telegram.Client
	pipeline *report.Pipeline
	index    *cache.Index
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Warn().Str("timezone", cfg.Schedule.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	storeClient, err := store.NewClient(store.ClientConfig{Token: cfg.Notion.Token}, nil)
	if err != nil {
		return nil, fmt.Errorf("store client: %w", err)
	}

	notifier := telegram.NewClient(telegram.ClientConfig{
		Token:  cfg.Telegram.Token,
		ChatID: cfg.Telegram.ChatID,
	}, nil)
	if !notifier.Enabled() {
		log.Warn().Msg("telegram is not fully configured, reports will only be logged")
	}

	adv := advisor.New(ctx, cfg.Advisor.Enabled, cfg.Advisor.Model)

	return &app{
		cfg:      cfg,
		loc:      loc,
		store:    storeClient,
		notifier: notifier,
		pipeline: report.New(storeClient, adv, cfg),
		index:    cache.New(),
	}, nil
}

// today is the current date in the configured timezone.
func (a *app) today() time.Time {
	return time.Now().In(a.loc)
}

// sendDaily builds and delivers the daily report, caching its listing indices
// so a following /done command can refer to them.
func (a *app) sendDaily(ctx context.Context, now time.Time) {
	rep := a.pipeline.Daily(ctx, now)
	a.index.Store(a.cfg.Telegram.ChatID, rep.TaskIDs)
	a.notifier.SendLong(ctx, rep.Text)
}
