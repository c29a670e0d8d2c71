// Package main provides the CLI entry point for h264play.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/h264play/pkg/adapters/assetstore"
	"github.com/user/h264play/pkg/adapters/filesink"
	"github.com/user/h264play/pkg/adapters/ggrenderer"
	"github.com/user/h264play/pkg/adapters/logger"
	"github.com/user/h264play/pkg/adapters/nullsink"
	"github.com/user/h264play/pkg/adapters/openh264"
	"github.com/user/h264play/pkg/adapters/osfilesystem"
	"github.com/user/h264play/pkg/adapters/surface"
	"github.com/user/h264play/pkg/bitstream"
	"github.com/user/h264play/pkg/config"
	"github.com/user/h264play/pkg/orchestrator"
	"github.com/user/h264play/pkg/ports"
	"github.com/user/h264play/pkg/summarizer"
)

var version = "dev"

// ErrNoVideos is returned when a command is run without input files.
var ErrNoVideos = errors.New("at least one video file is required")

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "h264play",
		Usage:   l10n.T("Decode and play H.264 elementary streams"),
		Version: version,
		Description: l10n.T("h264play decodes H.264 Annex B streams on background workers " +
			"and paces the decoded frames at a fixed or real-time rate."),
		Commands: []*cli.Command{
			playCommand(),
			infoCommand(),
			versionCommand(),
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     l10n.T("Play one or more H.264 streams"),
		ArgsUsage: "VIDEO...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},

			// Playback
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: l10n.T("Pacing mode (fixed, realtime)"), Category: l10n.T("Playback")},
			&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frames per second (default: 30)"), Category: l10n.T("Playback")},
			&cli.IntFlag{Name: "frame-time-ms", Usage: l10n.T("Frame duration in real-time mode (0 = 1000/fps)"), Category: l10n.T("Playback")},
			&cli.Float64Flag{Name: "tick-rate", Usage: l10n.T("Host ticks per second in real-time mode (default: 120)"), Category: l10n.T("Playback")},
			&cli.BoolFlag{Name: "repeat", Aliases: []string{"r"}, Usage: l10n.T("Loop videos forever"), Category: l10n.T("Playback")},
			&cli.IntFlag{Name: "restarts", Usage: l10n.T("Play finished videos again this many times"), Category: l10n.T("Playback")},
			&cli.IntFlag{Name: "buffer", Usage: l10n.T("Decoded frame queue capacity (0 = mode default)"), Category: l10n.T("Playback")},
			&cli.IntFlag{Name: "max-frames", Usage: l10n.T("Stop after this many displayed frames (0 = no limit)"), Category: l10n.T("Playback")},
			&cli.IntFlag{Name: "duration-ms", Usage: l10n.T("Stop after this many milliseconds (0 = no limit)"), Category: l10n.T("Playback")},
			&cli.BoolFlag{Name: "clamp", Usage: l10n.T("Clamp out-of-range colors instead of wrapping"), Category: l10n.T("Playback")},

			// Snapshots
			&cli.StringFlag{Name: "snapshot-dir", Aliases: []string{"o"}, Usage: l10n.T("Directory for displayed frame images"), Category: l10n.T("Snapshots")},
			&cli.IntFlag{Name: "snapshot-every", Usage: l10n.T("Save every Nth displayed frame (default: 1)"), Category: l10n.T("Snapshots")},
			&cli.IntFlag{Name: "snapshot-width", Usage: l10n.T("Scale snapshots to this width (0 = decoded size)"), Category: l10n.T("Snapshots")},
			&cli.StringFlag{Name: "snapshot-format", Usage: l10n.T("Snapshot image format (png, jpeg)"), Category: l10n.T("Snapshots")},
			&cli.BoolFlag{Name: "annotate", Usage: l10n.T("Draw the stream name and frame number on snapshots"), Category: l10n.T("Snapshots")},

			// Output
			&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: l10n.T("Write a Markdown run summary to this path"), Category: l10n.T("Output")},

			// Logging
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		},
		Action: runPlay,
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Describe the access units of H.264 streams"),
		ArgsUsage: "VIDEO...",
		Action:    runInfo,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("h264play version %s", version))
			if openh264.Available() {
				fmt.Fprintln(c.App.Writer, l10n.T("OpenH264 decoder: available"))
			} else {
				fmt.Fprintln(c.App.Writer, l10n.T("OpenH264 decoder: unavailable"))
			}
			return nil
		},
	}
}

// loadConfig reads the config file when given and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("mode") {
		cfg.Playback.Mode = c.String("mode")
	}
	if c.IsSet("fps") {
		cfg.Playback.FPS = c.Float64("fps")
	}
	if c.IsSet("frame-time-ms") {
		cfg.Playback.FrameTimeMs = c.Int("frame-time-ms")
	}
	if c.IsSet("tick-rate") {
		cfg.Playback.TickRate = c.Float64("tick-rate")
	}
	if c.IsSet("repeat") {
		cfg.Playback.Repeat = c.Bool("repeat")
	}
	if c.IsSet("restarts") {
		cfg.Playback.Restarts = c.Int("restarts")
	}
	if c.IsSet("buffer") {
		cfg.Playback.Buffer = c.Int("buffer")
	}
	if c.IsSet("max-frames") {
		cfg.Playback.MaxFrames = c.Int("max-frames")
	}
	if c.IsSet("duration-ms") {
		cfg.Playback.DurationMs = c.Int("duration-ms")
	}
	if c.IsSet("clamp") {
		cfg.Color.Clamp = c.Bool("clamp")
	}
	if c.IsSet("snapshot-dir") {
		cfg.Snapshot.Dir = c.String("snapshot-dir")
	}
	if c.IsSet("snapshot-every") {
		cfg.Snapshot.Every = c.Int("snapshot-every")
	}
	if c.IsSet("snapshot-width") {
		cfg.Snapshot.Width = c.Int("snapshot-width")
	}
	if c.IsSet("snapshot-format") {
		cfg.Snapshot.Format = c.String("snapshot-format")
	}
	if c.IsSet("annotate") {
		cfg.Snapshot.Annotate = c.Bool("annotate")
	}
	if c.IsSet("summary") {
		cfg.Summary = c.String("summary")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = "quiet"
	}

	return cfg, cfg.Validate()
}

func runPlay(c *cli.Context) error {
	videos := c.Args().Slice()
	if len(videos) == 0 {
		return ErrNoVideos
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if cfg.Level() == ports.LevelQuiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(cfg.Level())
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	assets := assetstore.New(fs, log)
	targets := surface.NewStore()

	var sink ports.FrameSink
	if cfg.Snapshot.Dir != "" {
		if err := fs.MkdirAll(cfg.Snapshot.Dir); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
		format, _ := config.ParseImageFormat(cfg.Snapshot.Format)
		sink = filesink.New(cfg.Snapshot.Dir, fs, ggrenderer.New(), filesink.Options{
			Format:   format,
			Width:    cfg.Snapshot.Width,
			Annotate: cfg.Snapshot.Annotate,
		})
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(assets, targets, openh264.NewH264Decoder, sink, log)

	result, err := orch.Run(ctx, cfg.ToOrchestratorConfig(videos))
	if err != nil {
		return err
	}

	report(log, fs, cfg, result)
	return nil
}

// report logs the run totals and writes the Markdown summary when one is
// configured. A summary that cannot be written is only a warning.
func report(log ports.Logger, fs ports.FileSystem, cfg config.Config, result orchestrator.RunResult) {
	log.Info("Displayed %d frames in %d ticks", result.TotalFrames, result.Ticks)
	if cfg.Snapshot.Dir != "" {
		log.Info("Snapshots saved to %s", cfg.Snapshot.Dir)
	}

	if cfg.Summary == "" {
		return
	}
	writer := summarizer.NewWriter(
		summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		),
		fs,
	)
	if err := writer.Write(cfg.Summary, buildSummary(cfg, result)); err != nil {
		log.Warn("Failed to write summary: %s", err)
	} else {
		log.Info("Summary saved to %s", cfg.Summary)
	}
}

// buildSummary converts a run result into a summary.
func buildSummary(cfg config.Config, result orchestrator.RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithRun(summarizer.RunInfo{
			StopReason:  result.StopReason,
			Interrupted: result.Interrupted,
			Ticks:       result.Ticks,
			Elapsed:     result.Elapsed,
			TotalFrames: result.TotalFrames,
			Snapshots:   result.Snapshots,
		}).
		WithSettings(summarizer.Settings{
			Mode:        result.Mode,
			FPS:         result.FPS,
			TickRate:    result.TickRate,
			Repeat:      cfg.Playback.Repeat,
			Restarts:    cfg.Playback.Restarts,
			Buffer:      cfg.Playback.Buffer,
			ColorMode:   cfg.ColorMode().String(),
			SnapshotDir: cfg.Snapshot.Dir,
			MaxFrames:   cfg.Playback.MaxFrames,
			Duration:    cfg.ToOrchestratorConfig(nil).Duration,
		})

	for _, s := range result.Streams {
		b.AddStream(summarizer.StreamInfo{
			Video:     s.Video,
			Bytes:     s.Bytes,
			Units:     s.Units,
			Width:     s.Width,
			Height:    s.Height,
			Profile:   s.Profile,
			Level:     s.Level,
			Displayed: s.Displayed,
			Restarts:  s.Restarts,
			Missed:    s.Missed,
			Discarded: s.Discarded,
			Decoded:   s.Decoded,
			Empty:     s.Empty,
			Failed:    s.Failed,
			Outcome:   s.Outcome,
		})
	}
	return b.Build()
}

func runInfo(c *cli.Context) error {
	videos := c.Args().Slice()
	if len(videos) == 0 {
		return ErrNoVideos
	}

	fs := osfilesystem.New()
	for i, path := range videos {
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		if err := describe(c.App.Writer, fs, path); err != nil {
			return err
		}
	}
	return nil
}

// describe prints the segmentation and SPS details of one stream.
func describe(w io.Writer, fs ports.FileSystem, path string) error {
	r, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	units, err := bitstream.Load(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	info, err := bitstream.Describe(units)
	if err != nil && !errors.Is(err, bitstream.ErrNoSPS) {
		return fmt.Errorf("describe %s: %w", path, err)
	}

	fmt.Fprintln(w, path)
	fmt.Fprintln(w, l10n.F("  Access units:   %d (%d bytes)", info.Units, info.Bytes))
	fmt.Fprintln(w, l10n.F("  Pictures:       %d", info.Pictures))
	fmt.Fprintln(w, l10n.F("  Parameter sets: %d", info.ParameterSets))
	if info.Width > 0 {
		fmt.Fprintln(w, l10n.F("  Resolution:     %dx%d", info.Width, info.Height))
		fmt.Fprintln(w, l10n.F("  Profile/Level:  %d/%d", info.Profile, info.Level))
	} else {
		fmt.Fprintln(w, l10n.T("  No sequence parameter set found"))
	}

	types := make([]string, 0, len(info.Types))
	for _, name := range info.TypeNames() {
		types = append(types, fmt.Sprintf("%s=%d", name, info.Types[name]))
	}
	fmt.Fprintln(w, l10n.F("  NAL types:      %s", strings.Join(types, ", ")))
	return nil
}
