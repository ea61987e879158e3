// Command keymark renders, edits and exports markdown documents from the
// command line using the keymark editor core.
package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("keymark command failed")
		return 1
	}
	return 0
}

// cli carries state shared by subcommands.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "keymark",
		Short:         "Markdown rendering, editing and export",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to configuration file (TOML or YAML)")

	root.AddCommand(newRenderCmd(c))
	root.AddCommand(newTableCmd(c))
	root.AddCommand(newReplaceCmd(c))
	root.AddCommand(newWatchCmd(c))
	root.AddCommand(newVersionCmd())

	return root
}

// load reads the configuration and replaces the context logger with one
// honoring the logging section.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(cmd.ErrOrStderr()),
		pslog.WithEnvOptions(cfg.LoggerOptions()),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(pslog.ContextWithLogger(ctx, logger))
	if cfg.Source != "" {
		logger.Debug("config loaded", "path", cfg.Source)
	}
	return nil
}
