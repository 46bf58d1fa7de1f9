package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lg "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/diffcard"
	"github.com/fwojciec/diffcard/bubbletea"
	"github.com/fwojciec/diffcard/chroma"
	"github.com/fwojciec/diffcard/fs"
	dgenai "github.com/fwojciec/diffcard/genai"
	"github.com/fwojciec/diffcard/gitdiff"
	"github.com/fwojciec/diffcard/lipgloss"
	"github.com/fwojciec/diffcard/validator"
	"github.com/fwojciec/diffcard/yaml"
	"github.com/spf13/cobra"
)

// displayFlags are shared by the commands that draw a diff.
type displayFlags struct {
	split         bool
	noLineNumbers bool
	wrap          bool
	maxHeight     int
	theme         string
	patch         bool
}

func (f *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.split, "split", false, "show old and new side by side")
	cmd.Flags().BoolVar(&f.noLineNumbers, "no-line-numbers", false, "hide the line number gutter")
	cmd.Flags().BoolVar(&f.wrap, "wrap", false, "wrap long lines instead of truncating them")
	cmd.Flags().IntVar(&f.maxHeight, "max-height", 0, "maximum rows of output (0 for unbounded)")
	cmd.Flags().StringVar(&f.theme, "theme", "", "color theme (default or test)")
	cmd.Flags().BoolVar(&f.patch, "patch", false, "read the input as a unified patch")
}

// apply overrides configuration values with the flags the user set.
func (f *displayFlags) apply(cmd *cobra.Command, cfg diffcard.Config) diffcard.Config {
	flags := cmd.Flags()
	if flags.Changed("split") {
		cfg.ViewMode = diffcard.ViewUnified
		if f.split {
			cfg.ViewMode = diffcard.ViewSplit
		}
	}
	if flags.Changed("no-line-numbers") {
		cfg.ShowLineNumbers = !f.noLineNumbers
	}
	if flags.Changed("wrap") {
		cfg.WrapLines = f.wrap
	}
	if flags.Changed("max-height") {
		cfg.MaxHeight = f.maxHeight
	}
	if flags.Changed("theme") {
		cfg.Theme = f.theme
	}
	return cfg
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "diffcard",
		Short: "Present code diffs as interactive cards",
		Long: `diffcard displays diff payloads with collapsible files and hunks,
unified or split layouts, syntax highlighting and scoped actions.

Input is a JSON payload, a JSONL recording of payload frames, or a unified patch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", fs.DefaultConfigPath(), "configuration file")

	loadConfig := func() (diffcard.Config, error) {
		return yaml.LoadConfig(configPath)
	}

	root.AddCommand(
		newViewCmd(stdin, loadConfig),
		newRenderCmd(stdin, loadConfig),
		newValidateCmd(stdin),
	)
	return root
}

func newViewCmd(stdin io.Reader, loadConfig func() (diffcard.Config, error)) *cobra.Command {
	var (
		display    displayFlags
		streaming  bool
		summarize  bool
		model      string
		frameDelay time.Duration
		logPath    string
	)

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Open a diff in the interactive viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = display.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, closeLog, err := newLogger(logPath)
			if err != nil {
				return err
			}
			defer closeLog()

			app := newApp(stdin, args, display.patch, logger)
			if summarize {
				s, err := newSummarizer(ctx, model)
				if err != nil {
					return err
				}
				app.Summarizer = s
			}
			frames, err := app.Run(ctx)
			if err != nil {
				return err
			}

			opts := cfg.Options()
			opts.IsStreaming = streaming || len(frames) > 1

			viewer, updates, err := newViewer(cfg, opts, logger)
			if err != nil {
				return err
			}
			go replay(ctx, frames[1:], frameDelay, updates)
			return viewer.View(ctx, frames[0], updates)
		},
	}
	display.register(cmd)
	cmd.Flags().BoolVar(&streaming, "streaming", false, "treat incomplete payloads as still streaming")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "fill in missing summaries with Gemini (needs GEMINI_API_KEY)")
	cmd.Flags().StringVar(&model, "model", dgenai.DefaultModel, "Gemini model used by --summarize")
	cmd.Flags().DurationVar(&frameDelay, "frame-delay", 300*time.Millisecond, "pause between replayed JSONL frames")
	cmd.Flags().StringVar(&logPath, "log", "", "write a debug log to this file")
	return cmd
}

func newRenderCmd(stdin io.Reader, loadConfig func() (diffcard.Config, error)) *cobra.Command {
	var (
		display displayFlags
		width   int
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Print a diff without the interactive viewer",
		Long:  "Print the last payload of the input. Collapse state comes from the payload's defaults.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = display.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			frames, err := newApp(stdin, args, display.patch, nil).Run(cmd.Context())
			if err != nil {
				return err
			}
			d := frames[len(frames)-1]

			theme, err := lipgloss.ThemeByName(cfg.Theme)
			if err != nil {
				return err
			}
			tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r := lipgloss.NewRenderer(
				lipgloss.WithTheme(theme),
				lipgloss.WithRenderer(lg.NewRenderer(out)),
				lipgloss.WithTokenizer(tokenizer),
				lipgloss.WithLanguageDetector(chroma.NewDetector()),
			)

			opts := cfg.Options()
			rendered, err := r.RenderDiff(d, diffcard.NewViewState(d.ID), opts, lipgloss.Frame{Width: width})
			if err != nil {
				fmt.Fprintln(out, "failed to render diff")
				return err
			}
			fmt.Fprintln(out, r.Clip(rendered.Content, opts.MaxHeight))
			return nil
		},
	}
	display.register(cmd)
	cmd.Flags().IntVar(&width, "width", lipgloss.DefaultWidth, "output width in columns")
	return cmd
}

func newValidateCmd(stdin io.Reader) *cobra.Command {
	var patch bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check payloads and report every problem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			frames, err := newApp(stdin, args, patch, nil).Run(cmd.Context())
			if err != nil {
				var verr *diffcard.ValidationError
				if errors.As(err, &verr) {
					for _, issue := range verr.Issues {
						fmt.Fprintf(out, "  %s\n", issue)
					}
				}
				return err
			}
			for i, d := range frames {
				fmt.Fprintf(out, "frame %d: ok (%s, %d files, %s)\n", i+1, d.ID, len(d.Files), d.Phase())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&patch, "patch", false, "read the input as a unified patch")
	return cmd
}

func newApp(stdin io.Reader, args []string, patch bool, logger *slog.Logger) *App {
	app := &App{
		Input:     stdin,
		Patch:     patch,
		Parser:    gitdiff.NewParser(),
		Validator: validator.New(),
		Logger:    logger,
	}
	if len(args) > 0 && args[0] != "-" {
		app.FilePath = args[0]
	}
	return app
}

// newViewer wires the interactive viewer to a Host. Payloads sent on the
// returned channel replace the displayed diff.
func newViewer(cfg diffcard.Config, opts diffcard.Options, logger *slog.Logger) (*bubbletea.Viewer, chan *diffcard.Diff, error) {
	theme, err := lipgloss.ThemeByName(cfg.Theme)
	if err != nil {
		return nil, nil, err
	}
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return nil, nil, err
	}

	updates := make(chan *diffcard.Diff, 1)
	host := &Host{Config: cfg, Updates: updates, Now: time.Now, Logger: logger}
	viewer := bubbletea.NewViewer(
		bubbletea.WithTheme(theme),
		bubbletea.WithTokenizer(tokenizer),
		bubbletea.WithLanguageDetector(chroma.NewDetector()),
		bubbletea.WithOptions(opts),
		bubbletea.WithDispatcher(&diffcard.Dispatcher{Gate: host, Handler: host}),
		bubbletea.WithValidator(validator.New()),
		bubbletea.WithLogger(logger),
	)
	return viewer, updates, nil
}

func newSummarizer(ctx context.Context, model string) (*dgenai.Summarizer, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	client, err := dgenai.NewClient(ctx, key, model)
	if err != nil {
		return nil, err
	}
	return dgenai.NewSummarizer(client), nil
}

// newLogger returns a logger writing to path, or discarding everything when
// path is empty.
func newLogger(path string) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, f.Close, nil
}
