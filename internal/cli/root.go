package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"phonetracer/internal/config"
	"phonetracer/pkg/logger"
)

// Version is stamped at build time
var Version = "dev"

type options struct {
	configPath string
	dataDir    string
	verbose    bool
	timeout    time.Duration
}

// NewRootCmd builds the phonetrace command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "phonetrace",
		Short: "Phone number lookup and scam risk triage",
		Long: `phonetrace resolves phone number metadata, scores scam risk from
community reports and answers phone safety questions.

It shares configuration with the API server: config.yaml, .env and
PHONETRACER_* environment variables.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override the report and history directory")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "overall command timeout")

	rootCmd.AddCommand(
		newTraceCmd(opts),
		newAnalyzeCmd(opts),
		newChatCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "phonetrace %s\n", Version)
		},
	}
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout stays parseable JSON
func (o *options) newLogger(cfg *config.Config) *logger.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{
		Level:      level,
		Format:     "console",
		TimeFormat: cfg.Logger.TimeFormat,
		Output:     os.Stderr,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
