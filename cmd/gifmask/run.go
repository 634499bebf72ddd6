package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/gifmask/internal/capture"
	"github.com/nao1215/gifmask/internal/classify"
	"github.com/nao1215/gifmask/internal/config"
	"github.com/nao1215/gifmask/internal/host"
	"github.com/nao1215/gifmask/internal/log"
	"github.com/nao1215/gifmask/internal/model"
	"github.com/nao1215/gifmask/internal/pipeline"
	"github.com/nao1215/gifmask/internal/report"
	"github.com/nao1215/gifmask/internal/settings"
)

// defaultBatchSize is the number of inputs filtered concurrently.
const defaultBatchSize = 4

// Report format names accepted by the --format flag.
const (
	formatSimple   = "simple"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <url|file>...",
		Short: "Capture pages and mask GIFs matching the blocked words",
		Long: `Run captures each input, scans it for GIF media whose URL contains a
blocked word, and writes a filter report.

Inputs are URLs (fetched over HTTP) or local HTML files. With --render,
pages load in headless Chrome first so script-built content is captured
too. Masked documents keep working: placeholders carry restore state and
the original markup survives untouched in the report pipeline.

The blocked word list comes from --words, else the configuration file,
else the saved settings (see 'gifmask settings').

Examples:
  # Filter a live page with an inline word list
  gifmask run --words benjammin https://chat.example.com/channels/42

  # Render through headless Chrome before filtering
  gifmask run --render https://chat.example.com/app

  # Replay recorded mutation frames over a captured page
  gifmask run --stream frames.yml page.html

  # Write a JSON report and the masked documents
  gifmask run --format json --output report.json --masked-html out/ page.html

  # Fetch through a SOCKS5 proxy
  gifmask run --proxy 127.0.0.1:9050 https://chat.example.com/channels/42

Configuration file (.gifmask.yml) example:
  words:
    - benjammin
  blockInPicker: true
  hosts:
    chat.example.com:
      words:
        - dance`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Capture flags
	cmd.Flags().BoolP("render", "r", false,
		"Render pages in headless Chrome instead of a plain HTTP fetch")
	cmd.Flags().StringP("proxy", "p", "",
		"Fetch through a SOCKS5 proxy at the specified address (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page capture")
	cmd.Flags().StringP("stream", "s", "",
		"Replay mutation frames from the specified YAML file after the initial scan")

	// Filter flags
	cmd.Flags().StringSliceP("words", "w", nil,
		"Blocked words (comma separated)")
	cmd.Flags().Bool("case-sensitive", config.DefaultCaseSensitive,
		"Match blocked words case-sensitively")
	cmd.Flags().Bool("block-in-picker", config.DefaultBlockInPicker,
		"Mask GIF picker tiles too")

	// Batch flags
	cmd.Flags().IntP("batch", "b", defaultBatchSize,
		"Number of inputs filtered concurrently")

	// Report flags
	cmd.Flags().StringP("format", "f", formatSimple,
		"Report format: simple, json, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")
	cmd.Flags().String("masked-html", "",
		"Write each masked document into the specified directory")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	// Build options from flags and the configuration file
	opts, err := buildRunOptions(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := opts.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with blocked words redacted
	verbose := getVerboseFlag(cmd)
	logger := log.NewRedactLogger(os.Stderr, verbose, redactWords(opts.cfg, nil))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runFilter(ctx, cmd, opts, logger)
}

// runOptions collects the loaded configuration plus the flag values
// that only exist per invocation.
type runOptions struct {
	cfg    *config.Config
	inputs []string

	render    bool
	stream    string
	batch     int
	format    string
	output    string
	maskedDir string

	// pickerOverride and caseOverride are set when the flag was given
	// explicitly, so they win over the saved settings too.
	pickerOverride *bool
	caseOverride   *bool
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config flag from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// buildRunOptions creates runOptions from cobra command flags.
func buildRunOptions(cmd *cobra.Command, args []string) (*runOptions, error) {
	opts := &runOptions{inputs: args}

	// Load the configuration file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	configPath := getConfigFlag(cmd)
	cfg, err := config.Load(configPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		if configPath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		cfg = config.DefaultConfig()
	} else if err != nil {
		return nil, err
	}
	opts.cfg = cfg

	// Flags override the configuration file
	if cmd.Flags().Changed("words") {
		cfg.Words, err = cmd.Flags().GetStringSlice("words")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("proxy") {
		cfg.Proxy, err = cmd.Flags().GetString("proxy")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("block-in-picker") {
		v, err := cmd.Flags().GetBool("block-in-picker")
		if err != nil {
			return nil, err
		}
		cfg.BlockInPicker = v
		opts.pickerOverride = &v
	}
	if cmd.Flags().Changed("case-sensitive") {
		v, err := cmd.Flags().GetBool("case-sensitive")
		if err != nil {
			return nil, err
		}
		cfg.CaseSensitive = v
		opts.caseOverride = &v
	}

	opts.render, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	opts.stream, err = cmd.Flags().GetString("stream")
	if err != nil {
		return nil, err
	}

	opts.batch, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	opts.format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	switch opts.format {
	case formatSimple, formatJSON, formatMarkdown:
	default:
		return nil, fmt.Errorf("unknown report format %q (expected simple, json, or markdown)", opts.format)
	}

	opts.output, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	opts.maskedDir, err = cmd.Flags().GetString("masked-html")
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// redactWords collects every blocked word a run could log: the
// configured list, all per-host overrides, and the resolved view.
// The logger masks all of them regardless of which source wins.
func redactWords(cfg *config.Config, view *settings.View) []string {
	words := make([]string, 0, len(cfg.Words))
	words = append(words, cfg.Words...)
	for _, hc := range cfg.Hosts {
		words = append(words, hc.Words...)
	}
	if view != nil {
		words = append(words, view.Words...)
	}
	return words
}

// runEnv carries the capture and filter machinery one run builds
// before processing inputs.
type runEnv struct {
	fetcher  *capture.Fetcher
	renderer *capture.Renderer
	frames   []host.Frame
	view     settings.View
	logger   *slog.Logger
}

// runFilter executes the filter run.
func runFilter(ctx context.Context, cmd *cobra.Command, opts *runOptions, logger *slog.Logger) error {
	if len(opts.inputs) == 0 {
		return errors.New("no inputs provided (specify one or more URLs or HTML files as arguments)")
	}

	// Decide the settings the engine scans with
	view := resolveView(ctx, opts, logger)

	// Rebuild the logger once the word list is final so saved words are
	// redacted too
	logger = log.NewRedactLogger(os.Stderr, getVerboseFlag(cmd), redactWords(opts.cfg, &view))
	slog.SetDefault(logger)

	logger.Info("starting filter run",
		"inputs", len(opts.inputs),
		"render", opts.render,
		"batch", opts.batch,
		"blockInPicker", view.BlockInPicker,
	)

	env := &runEnv{view: view, logger: logger}

	// Build the page fetcher
	fetchOpts := []capture.Option{
		capture.WithTimeout(opts.cfg.Timeout),
		capture.WithLogger(logger),
	}
	if opts.cfg.Proxy != "" {
		fetchOpts = append(fetchOpts, capture.WithSOCKS5(opts.cfg.Proxy))
	}
	fetcher, err := capture.NewFetcher(fetchOpts...)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	env.fetcher = fetcher

	// Build the headless renderer only when requested; the browser
	// does not launch until the first snapshot
	if opts.render {
		env.renderer = capture.NewRenderer(
			capture.WithSnapshotTimeout(opts.cfg.Timeout),
			capture.WithSnapshotLogger(logger),
		)
		defer env.renderer.Close()
	}

	// Load replay frames if configured
	if opts.stream != "" {
		env.frames, err = loadFrames(opts.stream)
		if err != nil {
			return fmt.Errorf("failed to load frame stream %s: %w", opts.stream, err)
		}
		logger.Info("loaded frame stream", "file", opts.stream, "frames", len(env.frames))
	}

	// Use batch processing for parallel filtering if multiple inputs
	if len(opts.inputs) > 1 && opts.batch > 1 {
		return runBatch(ctx, opts, env)
	}

	// Single input or sequential filtering
	return runSequential(ctx, opts, env)
}

// resolveView decides the settings the engine scans with.
// An inline or configured word list takes the view from the
// configuration; otherwise the saved settings store provides it.
// Explicit --block-in-picker and --case-sensitive flags win either way.
func resolveView(ctx context.Context, opts *runOptions, logger *slog.Logger) settings.View {
	cfg := opts.cfg

	var view settings.View
	if len(cfg.Words) > 0 {
		view = settings.View{
			BlockInPicker: cfg.BlockInPicker,
			CaseSensitive: cfg.CaseSensitive,
			Words:         cfg.Words,
		}
	} else {
		view = loadSavedView(ctx, cfg.Database, logger)
	}

	if opts.pickerOverride != nil {
		view.BlockInPicker = *opts.pickerOverride
	}
	if opts.caseOverride != nil {
		view.CaseSensitive = *opts.caseOverride
	}

	return view
}

// loadSavedView reads the view from the settings database. A missing
// or unreadable store degrades to the defaults instead of failing the
// run.
func loadSavedView(ctx context.Context, dbPath string, logger *slog.Logger) settings.View {
	if dbPath == "" {
		dbPath = settings.DefaultPath()
	}

	db, err := settings.Open(dbPath)
	if err != nil {
		logger.Warn("settings database unavailable, using defaults",
			"path", dbPath,
			"error", err,
		)
		return settings.DefaultView()
	}
	defer db.Close() //nolint:errcheck // Read-only use

	view, err := settings.Load(ctx, db)
	if err != nil {
		// Load already merged everything it could read
		logger.Warn("failed to load saved settings", "error", err)
	}
	return view
}

// loadFrames reads a YAML frame stream for replay.
func loadFrames(path string) ([]host.Frame, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var frames []host.Frame
	if err := yaml.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("failed to decode frames: %w", err)
	}
	return frames, nil
}

// hostOf extracts the host of an input URL for per-host configuration.
// Local file inputs have no host.
func hostOf(input string) string {
	u, err := url.Parse(input)
	if err != nil {
		return ""
	}
	return u.Host
}

// newPipeline assembles the capture, filter, and output steps for one
// configuration and view. The settings store is seeded in memory; the
// engine loads from it at start.
func newPipeline(opts *runOptions, env *runEnv, cfg *config.Config, view settings.View) *pipeline.Pipeline {
	store := settings.NewMemoryStore()
	if err := settings.Save(context.Background(), store, view); err != nil {
		env.logger.Warn("failed to seed settings store", "error", err)
	}

	captureOpts := []pipeline.CaptureStepOption{
		pipeline.WithCaptureLogger(env.logger),
	}
	if env.renderer != nil {
		captureOpts = append(captureOpts, pipeline.WithRenderer(env.renderer))
	}

	filterOpts := []pipeline.FilterStepOption{
		pipeline.WithKeepMasked(opts.maskedDir != ""),
		pipeline.WithFilterLogger(env.logger),
	}
	if len(cfg.Patterns) > 0 {
		filterOpts = append(filterOpts, pipeline.WithClassifier(
			classify.NewClassifier(classify.WithPatterns(cfg.Patterns)),
		))
	}

	p := pipeline.New(pipeline.WithLogger(env.logger))
	p.AddStep(pipeline.NewCaptureStep(env.fetcher, captureOpts...))
	p.AddStep(pipeline.NewFilterStep(store, filterOpts...))
	if opts.maskedDir != "" {
		p.AddStep(pipeline.NewSaveHTMLStep(opts.maskedDir, pipeline.WithSaveLogger(env.logger)))
	}
	return p
}

// runSequential filters inputs one at a time, applying per-host
// configuration overrides.
func runSequential(ctx context.Context, opts *runOptions, env *runEnv) error {
	for i, input := range opts.inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Per-host overrides adjust the patterns and the filter view.
		// Explicit flags still win over host configuration.
		cfg := opts.cfg
		view := env.view
		if h := hostOf(input); h != "" {
			if hc, ok := cfg.Hosts[h]; ok {
				cfg = cfg.ForHost(h)
				if len(hc.Words) > 0 {
					view.Words = hc.Words
				}
				if hc.BlockInPicker != nil && opts.pickerOverride == nil {
					view.BlockInPicker = *hc.BlockInPicker
				}
				if hc.CaseSensitive != nil && opts.caseOverride == nil {
					view.CaseSensitive = *hc.CaseSensitive
				}
			}
		}

		p := newPipeline(opts, env, cfg, view)

		job := pipeline.NewJob(input, i)
		job.Frames = env.frames

		fmt.Printf("Filtering %s...\n", input)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, job); err != nil {
			env.logger.Error("filter failed", "input", input, "error", err)
			fmt.Fprintf(os.Stderr, "Filter error for %s: %v\n", input, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Filter completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(opts, job.Report); err != nil {
			env.logger.Error("report failed", "input", input, "error", err)
		}
	}

	return nil
}

// runBatch filters multiple inputs concurrently using the batch
// processor.
func runBatch(ctx context.Context, opts *runOptions, env *runEnv) error {
	fmt.Printf("Starting batch filter of %d inputs (concurrency: %d)...\n\n",
		len(opts.inputs), opts.batch)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if len(opts.cfg.Hosts) > 0 {
		env.logger.Warn("batch processing uses the default filter view; per-host overrides are ignored",
			"hostCount", len(opts.cfg.Hosts))
		fmt.Fprintf(os.Stderr, "Warning: Per-host configuration is ignored in batch mode. Use sequential mode (--batch 1) to apply host overrides.\n\n")
	}

	// Create batch with a pipeline factory
	b := pipeline.NewBatch(
		func() *pipeline.Pipeline {
			// Note: For batch processing, we use the default view.
			// Per-host views would require per-input pipeline creation.
			return newPipeline(opts, env, opts.cfg, env.view)
		},
		pipeline.WithConcurrency(opts.batch),
		pipeline.WithBatchLogger(env.logger),
	)

	jobs := make([]*pipeline.Job, 0, len(opts.inputs))
	for i, input := range opts.inputs {
		job := pipeline.NewJob(input, i)
		job.Frames = env.frames
		jobs = append(jobs, job)
	}

	// Process with callback for streaming output
	var mu sync.Mutex
	completed := 0
	err := b.ProcessWithCallback(ctx, jobs, func(job *pipeline.Job) {
		mu.Lock()
		defer mu.Unlock()

		completed++
		if job.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Filter error for %s: %v\n",
				completed, len(jobs), job.Input, job.Err)
			return
		}

		fmt.Printf("[%d/%d] Filter completed: %s\n", completed, len(jobs), job.Input)

		// Generate and output report
		if err := outputReport(opts, job.Report); err != nil {
			env.logger.Error("report failed", "input", job.Input, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch filter completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// outputReport outputs the filter report in the requested format.
func outputReport(opts *runOptions, filterReport *model.FilterReport) error {
	if filterReport == nil {
		return errors.New("no report produced")
	}

	// Generate the summary writers render
	if filterReport.Summary == nil {
		filterReport.Summary = model.NewSummary(filterReport)
	}

	// Determine output destination
	var output *os.File
	if opts.output != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(opts.output)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions;
		// reports carry the blocked word list
		f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	switch opts.format {
	case formatJSON:
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(filterReport)
		return err
	case formatMarkdown:
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(filterReport)
		return err
	default:
		writer := report.NewSimpleWriter(output)
		_, err := writer.Write(filterReport)
		return err
	}
}
