package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/config"
	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/integrator"
	"github.com/df07/go-diffuse-pathtracer/pkg/output"
	"github.com/df07/go-diffuse-pathtracer/pkg/renderer"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

// options are the command line settings that are not part of a render config
type options struct {
	configPath string
	verbose    bool
	watch      bool
	list       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.list {
		return listScenes(stdout, cfg.ScenesDir)
	}

	if opts.watch {
		reload := func() (config.RenderConfig, error) {
			cfg, _, err := parseArgs(args, io.Discard)
			return cfg, err
		}
		return watch(ctx, watchedFiles(cfg, opts), reload, logger)
	}
	return renderAndSave(ctx, cfg, logger)
}

// parseArgs builds the render config: defaults, then the config file, then
// any flag given explicitly on the command line
func parseArgs(args []string, stderr io.Writer) (config.RenderConfig, options, error) {
	var opts options
	flagCfg := config.Default()
	var sky, sun string

	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "TOML render config (default "+config.DefaultFile+" if present)")
	fs.BoolVar(&opts.verbose, "v", false, "Log debug output, including per-row progress")
	fs.BoolVar(&opts.watch, "watch", false, "Re-render whenever the config or scene file changes")
	fs.BoolVar(&opts.list, "list", false, "List available scenes and exit")
	fs.StringVar(&flagCfg.Scene, "scene", flagCfg.Scene, "Built-in scene ID, file:<name> from the scenes dir, or a .yaml path")
	fs.StringVar(&flagCfg.ScenesDir, "scenes", flagCfg.ScenesDir, "Directory of YAML scene files")
	fs.IntVar(&flagCfg.Width, "width", flagCfg.Width, "Image width in pixels")
	fs.IntVar(&flagCfg.Height, "height", flagCfg.Height, "Image height in pixels")
	fs.IntVar(&flagCfg.SamplesPerPixel, "spp", flagCfg.SamplesPerPixel, "Samples per pixel")
	fs.IntVar(&flagCfg.MaxDepth, "depth", flagCfg.MaxDepth, "Maximum bounces per path")
	fs.Uint64Var(&flagCfg.Seed, "seed", flagCfg.Seed, "Random seed")
	fs.IntVar(&flagCfg.Workers, "workers", flagCfg.Workers, "Parallel tile workers (0 = one per CPU, 1 = reference render)")
	fs.IntVar(&flagCfg.TileSize, "tile", flagCfg.TileSize, "Tile size for parallel renders")
	fs.IntVar(&flagCfg.Passes, "passes", flagCfg.Passes, "Progressive passes")
	fs.StringVar(&flagCfg.Output, "o", flagCfg.Output, "Output path or bucket URL (.png, .bmp, .tif)")
	fs.StringVar(&sky, "sky", "", "Sky color override as r,g,b")
	fs.StringVar(&sun, "sun", "", "Sun direction override as x,y,z")

	if err := fs.Parse(args); err != nil {
		return config.RenderConfig{}, opts, err
	}
	if fs.NArg() > 0 {
		return config.RenderConfig{}, opts, errors.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return cfg, opts, err
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = flagCfg.Scene
		case "scenes":
			cfg.ScenesDir = flagCfg.ScenesDir
		case "width":
			cfg.Width = flagCfg.Width
		case "height":
			cfg.Height = flagCfg.Height
		case "spp":
			cfg.SamplesPerPixel = flagCfg.SamplesPerPixel
		case "depth":
			cfg.MaxDepth = flagCfg.MaxDepth
		case "seed":
			cfg.Seed = flagCfg.Seed
		case "workers":
			cfg.Workers = flagCfg.Workers
		case "tile":
			cfg.TileSize = flagCfg.TileSize
		case "passes":
			cfg.Passes = flagCfg.Passes
		case "o":
			cfg.Output = flagCfg.Output
		case "sky":
			v, err := config.ParseTriple(sky)
			if err != nil {
				parseErr = errors.Wrap(err, "-sky")
			}
			cfg.Sky = &v
		case "sun":
			v, err := config.ParseTriple(sun)
			if err != nil {
				parseErr = errors.Wrap(err, "-sun")
			}
			cfg.Sun = &v
		}
	})
	if parseErr != nil {
		return cfg, opts, parseErr
	}

	return cfg, opts, cfg.Validate()
}

// loadConfig reads path, or the default config file when path is empty and
// one exists in the working directory
func loadConfig(path string) (config.RenderConfig, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err != nil {
			return config.Default(), nil
		}
		path = config.DefaultFile
	}
	return config.Load(path)
}

func listScenes(w io.Writer, dir string) error {
	scenes, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, group := range scenes.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Fprintf(w, "  %-20s %s\n", info.ID, info.Description)
		}
	}
	return nil
}

// createScene opens the configured scene, applies the config's sky and sun
// overrides and moves it into view space
func createScene(cfg config.RenderConfig) (*scene.Scene, error) {
	sc, err := scene.Open(cfg.Scene, cfg.ScenesDir)
	if err != nil {
		return nil, err
	}
	if sky, ok := cfg.SkyColor(); ok {
		sc.Sky = sky
	}
	if sun, ok := cfg.SunDirection(); ok {
		sc.SunDirection = sun
	}
	if err := sc.Preprocess(); err != nil {
		return nil, err
	}
	return sc, nil
}

func renderAndSave(ctx context.Context, cfg config.RenderConfig, logger *slog.Logger) error {
	logger = logger.With("render", uuid.NewString())

	img, stats, err := render(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("render statistics",
		"pixels", stats.TotalPixels,
		"averageSamples", stats.AverageSamples,
		"minSamples", stats.MinSamples,
		"maxSamples", stats.MaxSamplesUsed)

	if err := output.Save(ctx, cfg.Output, img, logger); err != nil {
		return err
	}
	logger.Info("render saved", "output", cfg.Output)
	return nil
}

// render produces the final image. A single worker with a single pass is the
// reference render; anything else renders tiles progressively.
func render(ctx context.Context, cfg config.RenderConfig, logger *slog.Logger) (image.Image, renderer.RenderStats, error) {
	sc, err := createScene(cfg)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	integ := integrator.NewPathTracingIntegrator(cfg.MaxDepth, sc.Sky)

	logger.Info("starting render",
		"scene", sc.Name,
		"primitives", sc.PrimitiveCount(),
		"width", cfg.Width,
		"height", cfg.Height,
		"samplesPerPixel", cfg.SamplesPerPixel,
		"maxDepth", cfg.MaxDepth,
		"reference", cfg.Reference())
	startTime := time.Now()

	if cfg.Reference() {
		rt := renderer.NewRaytracer(sc, integ, cfg.Width, cfg.Height)
		rt.SetSamplingConfig(renderer.SamplingConfig{SamplesPerPixel: cfg.SamplesPerPixel})
		rt.SetLogger(logger)
		img, stats, err := rt.RenderPass(ctx, core.NewRandomSampler(cfg.Seed))
		return img, stats, err
	}

	pr, err := renderer.NewProgressiveRaytracer(sc, integ, cfg.Width, cfg.Height, renderer.ProgressiveConfig{
		TileSize:           cfg.TileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: cfg.SamplesPerPixel,
		MaxPasses:          cfg.Passes,
		NumWorkers:         cfg.Workers,
		Seed:               cfg.Seed,
	}, logger)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	passChan, _, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})
	var last renderer.PassResult
	for result := range passChan {
		last = result
		logger.Info("pass finished", "pass", result.PassNumber, "of", cfg.Passes, "elapsed", time.Since(startTime))
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if last.Image == nil {
		return nil, renderer.RenderStats{}, errors.New("render produced no passes")
	}
	logger.Info("render complete", "elapsed", time.Since(startTime))
	return last.Image, last.Stats, nil
}
