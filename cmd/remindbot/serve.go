package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leminhq/remindbot/internal/schedule"
	"github.com/leminhq/remindbot/internal/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the webhook server and the report scheduler",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if url := app.cfg.Telegram.WebhookURL; url != "" {
				if err := app.notifier.SetWebhook(ctx, url); err != nil {
					log.Error().Err(err).Msg("webhook registration failed, commands will not arrive")
				} else {
					log.Info().Str("url", url).Msg("webhook registered")
				}
			}

			if app.cfg.Schedule.RunOnStart {
				app.notifier.Send(ctx, "🤖 remindbot is up.")
				app.sendDaily(ctx, app.today())
			}

			sched := schedule.New(app.loc,
				schedule.Entry{
					Name: "daily",
					Next: func(after time.Time) time.Time {
						return schedule.NextDaily(after, app.cfg.Schedule.DailyHour, app.cfg.Schedule.DailyMinute)
					},
					Run: app.sendDaily,
				},
				schedule.Entry{
					Name: "weekly",
					Next: func(after time.Time) time.Time {
						return schedule.NextWeekly(after, app.cfg.Schedule.WeeklyHour)
					},
					Run: func(ctx context.Context, now time.Time) {
						app.notifier.SendLong(ctx, app.pipeline.Weekly(ctx, now).Text)
					},
				},
				schedule.Entry{
					Name: "monthly",
					Next: func(after time.Time) time.Time {
						return schedule.NextMonthly(after, app.cfg.Schedule.MonthlyHour)
					},
					Run: func(ctx context.Context, now time.Time) {
						app.notifier.SendLong(ctx, app.pipeline.Monthly(ctx, now).Text)
					},
				},
			)
			go sched.Run(ctx)

			server := web.NewServer(app.cfg, app.loc, app.pipeline, app.notifier, app.store, app.index)
			httpServer := &http.Server{
				Addr:              app.cfg.Listen,
				Handler:           server.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", app.cfg.Listen).Msg("webhook server listening")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Info().Msg("shut down cleanly")
			return nil
		},
	}
}
