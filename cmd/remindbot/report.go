package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var send bool
	cmd := &cobra.Command{
		Use:          "report <daily|weekly|monthly>",
		Short:        "Build one report, print it, and optionally send it",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := buildApp(ctx)
			if err != nil {
				return err
			}

			var text string
			switch args[0] {
			case "daily":
				rep := app.pipeline.Daily(ctx, app.today())
				text = rep.Text
			case "weekly":
				text = app.pipeline.Weekly(ctx, app.today()).Text
			case "monthly":
				text = app.pipeline.Monthly(ctx, app.today()).Text
			default:
				return fmt.Errorf("unknown report %q, want daily, weekly or monthly", args[0])
			}

			fmt.Println(text)
			if send {
				app.notifier.SendLong(ctx, text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "also deliver the report to the configured chat")
	return cmd
}
