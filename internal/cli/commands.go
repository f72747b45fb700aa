package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/domain/services"
)

// run loads config, builds the app and hands it to fn under the command timeout
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) (any, error)) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	log := o.newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	a := newApp(ctx, cfg, log)
	defer a.Close()

	out, err := fn(ctx, a)
	if err != nil {
		if errors.Is(err, services.ErrInvalidNumber) {
			return fmt.Errorf("%w: include the country code, e.g. +14158586273", err)
		}
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func newTraceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <number>",
		Short: "Resolve a number and show its community reports",
		Example: `  phonetrace trace +14158586273
  phonetrace trace 442071838750`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) (any, error) {
				return a.trace.Trace(ctx, args[0])
			})
		},
	}
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <number>",
		Short: "Score the scam risk of a number",
		Long: `Analyze resolves the number offline, loads its community reports from
the configured store and prints the risk assessment. The lookup is not
added to the recent history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) (any, error) {
				trace, err := a.resolver.Resolve(ctx, args[0])
				if err != nil {
					return nil, err
				}
				reports, err := a.reports.ReportsFor(ctx, trace.E164)
				if err != nil {
					return nil, err
				}
				trace.SpamReports = len(reports)
				return a.analysis.Analyze(ctx, *trace)
			})
		},
	}
}

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "chat <message...>",
		Short:   "Ask a phone safety question",
		Example: `  phonetrace chat what is a wangiri scam`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message is required")
			}
			return opts.run(cmd, func(ctx context.Context, a *app) (any, error) {
				result := a.chat.Chat(ctx, message, nil)
				return &result, nil
			})
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the text generator state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) (any, error) {
				if a.llm.Status().State != models.LLMStateDisabled {
					// the error is reflected in the status
					_ = a.llm.Load(ctx)
				}
				status := a.llm.Status()
				return &status, nil
			})
		},
	}
}
