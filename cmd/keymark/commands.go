package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/app"
	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/format"
	"github.com/dshills/keymark/internal/theme"
	"github.com/dshills/keymark/internal/vfs"
	"github.com/dshills/keymark/internal/watcher"
)

// docFlags are the presentation overrides shared by document commands.
type docFlags struct {
	theme  string
	locale string
	quiet  bool
}

func (f *docFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.theme, "theme", "", "Theme override (light or dark)")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Interface language override (en, ar, zh, es)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Suppress notices")
}

// newApp builds an application over the OS file system with headless
// collaborators.
func (c *cli) newApp(cmd *cobra.Command, f docFlags) (*app.Application, error) {
	logger := pslog.Ctx(cmd.Context())

	opts := []app.Option{
		app.FromConfig(c.cfg),
		app.WithLogger(logger),
		app.WithViewSink(logView{logger: app.WithComponent(logger, "view")}),
		app.WithNotifier(consoleNotifier{w: cmd.ErrOrStderr(), quiet: f.quiet}),
		app.WithPrompter(batchPrompter{}),
	}
	if f.theme != "" {
		mode, err := theme.ParseMode(f.theme)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithTheme(mode))
	}
	if f.locale != "" {
		opts = append(opts, app.WithLocale(f.locale))
	}
	a, err := app.New(vfs.NewOSFS(), opts...)
	if err != nil {
		return nil, err
	}
	if err := logEvents(a.Bus(), app.WithComponent(logger, "events")); err != nil {
		return nil, err
	}
	return a, nil
}

func newRenderCmd(c *cli) *cobra.Command {
	var flags docFlags
	var output string
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a markdown file to standalone HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd, flags)
			if err != nil {
				return err
			}
			if _, err := a.OpenFile(args[0]); err != nil {
				return err
			}
			if output == "-" {
				out := a.Active().Rendered(a.Pipeline(), a.Theme(), a.Locale())
				_, err := io.WriteString(cmd.OutOrStdout(), out.HTML)
				return err
			}
			_, err = a.ExportHTML(output)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path; \"-\" writes to stdout (default: next to the file)")
	return cmd
}

func newTableCmd(c *cli) *cobra.Command {
	var rows, cols int
	var locale string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print a markdown table template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd, docFlags{locale: locale, quiet: true})
			if err != nil {
				return err
			}
			defRows, defCols := a.TableDefaults()
			if !cmd.Flags().Changed("rows") {
				rows = defRows
			}
			if !cmd.Flags().Changed("cols") {
				cols = defCols
			}
			rows, cols = format.ClampDimension(rows), format.ClampDimension(cols)
			_, err = io.WriteString(cmd.OutOrStdout(), format.Table(rows, cols, a.Locale(), a.Catalog()))
			return err
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "r", format.DefaultRows, "Number of data rows (1-99)")
	cmd.Flags().IntVarP(&cols, "cols", "k", format.DefaultCols, "Number of columns (1-99)")
	cmd.Flags().StringVar(&locale, "locale", "", "Language for the header and cell labels")
	return cmd
}

func newReplaceCmd(c *cli) *cobra.Command {
	var flags docFlags
	var find, with string
	var write bool
	cmd := &cobra.Command{
		Use:   "replace <file>",
		Short: "Replace every literal occurrence of a string in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if find == "" {
				return fmt.Errorf("--find is required")
			}
			a, err := c.newApp(cmd, flags)
			if err != nil {
				return err
			}
			if _, err := a.OpenFile(args[0]); err != nil {
				return err
			}
			if _, err := a.ReplaceAll(find, with); err != nil {
				return err
			}
			if write {
				_, err := a.Save()
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), a.Active().Text())
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&find, "find", "", "Literal text to find (case-sensitive)")
	cmd.Flags().StringVar(&with, "with", "", "Replacement text")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file instead of stdout")
	return cmd
}

func newWatchCmd(c *cli) *cobra.Command {
	var flags docFlags
	var output string
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-export HTML whenever a markdown file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)

			a, err := c.newApp(cmd, flags)
			if err != nil {
				return err
			}
			if _, err := a.OpenFile(args[0]); err != nil {
				return err
			}

			exports := 0
			if _, err := a.Bus().Subscribe(event.TopicDocumentExported, func(_ context.Context, ev event.Event) {
				exports++
				if p, ok := ev.Payload.(event.SessionPayload); ok {
					logger.Info("export refreshed", "path", p.Path, "exports", exports)
				}
			}); err != nil {
				return err
			}
			if _, err := a.ExportHTML(output); err != nil {
				return err
			}

			w, err := watcher.New(watcher.WithLogger(app.WithComponent(logger, "watcher")))
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Watch(a.Active().Path()); err != nil {
				return err
			}
			logger.Info("watching", "paths", w.WatchedPaths())

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-w.Events():
					if !ok {
						return nil
					}
					if removed(ev) {
						logger.Warn("watched file removed", "path", ev.Path)
						continue
					}
					if _, err := a.Reload(); err != nil {
						continue
					}
					if _, err := a.ExportHTML(output); err != nil {
						logger.Error("export failed", "err", err)
					}
				case err, ok := <-w.Errors():
					if !ok {
						return nil
					}
					logger.Warn("watch error", "err", err)
				}
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: next to the file)")
	return cmd
}

// removed reports whether ev left its path without a file. Debouncing merges
// operations, so a delete followed by a re-create still carries OpRemove.
func removed(ev watcher.Event) bool {
	if !ev.Op.Has(watcher.OpRemove) {
		return false
	}
	_, err := os.Stat(ev.Path)
	return errors.Is(err, fs.ErrNotExist)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "keymark %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
}
