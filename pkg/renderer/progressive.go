package renderer

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/integrator"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize           int    // Size of each square tile in pixels
	InitialSamples     int    // Samples for first pass
	MaxSamplesPerPixel int    // Maximum total samples per pixel
	MaxPasses          int    // Maximum number of passes
	NumWorkers         int    // Number of parallel workers (0 = use CPU count)
	Seed               uint64 // Base seed for the per-tile samplers
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           64,
		InitialSamples:     1,
		MaxSamplesPerPixel: 100,
		MaxPasses:          7,
		NumWorkers:         0, // Auto-detect CPU count
		Seed:               42,
	}
}

// ProgressiveRaytracer refines an image over several passes, rendering tiles
// in parallel. Each tile owns a sampler seeded from the base seed and the tile
// ID, so the result depends on the seed and tile size but not on scheduling.
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile        // Tile management
	pixelStats    [][]PixelStats // Shared pixel statistics array (global image coordinates)
	workerPool    *WorkerPool    // Worker pool for parallel processing
	logger        *slog.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer. The scene must
// already be preprocessed.
func NewProgressiveRaytracer(sc *scene.Scene, integratorInst integrator.Integrator, width, height int, config ProgressiveConfig, logger *slog.Logger) (*ProgressiveRaytracer, error) {
	if config.TileSize <= 0 {
		return nil, errors.Errorf("tile size must be positive, got %d", config.TileSize)
	}
	if config.MaxPasses <= 0 {
		return nil, errors.Errorf("max passes must be positive, got %d", config.MaxPasses)
	}
	if config.MaxSamplesPerPixel < config.MaxPasses {
		return nil, errors.Errorf("%d samples per pixel cannot be spread over %d passes", config.MaxSamplesPerPixel, config.MaxPasses)
	}
	if config.InitialSamples <= 0 || config.InitialSamples > config.MaxSamplesPerPixel {
		return nil, errors.Errorf("initial samples must be in [1, %d], got %d", config.MaxSamplesPerPixel, config.InitialSamples)
	}
	if logger == nil {
		logger = slog.Default()
	}

	tileRenderer := NewTileRenderer(sc, integratorInst, NewCamera(width, height))

	return &ProgressiveRaytracer{
		width:      width,
		height:     height,
		config:     config,
		tiles:      NewTileGrid(width, height, config.TileSize, config.Seed),
		pixelStats: newPixelGrid(width, height),
		workerPool: NewWorkerPool(tileRenderer, config.NumWorkers),
		logger:     logger,
	}, nil
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass

	// For the final pass, use all remaining samples
	if passNumber == pr.config.MaxPasses {
		targetSamples = pr.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Info("starting pass", "pass", passNumber, "targetSamples", targetSamples, "workers", pr.workerPool.GetNumWorkers())

	tasks := make([]TileTask, len(pr.tiles))
	for i, tile := range pr.tiles {
		tasks[i] = TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        i,
			PixelStats:    pr.pixelStats,
		}
	}

	completed := 0
	err := pr.workerPool.Render(ctx, tasks, func(result TileResult) {
		completed++
		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++

		if tileCallback == nil {
			return
		}
		tileCallback(TileCompletionResult{
			TileX:       tile.Bounds.Min.X / pr.config.TileSize,
			TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
			TileImage:   pr.extractTileImage(tile),
			PassNumber:  passNumber,
			TileNumber:  completed,
			TotalTiles:  len(pr.tiles),
			TotalPasses: pr.config.MaxPasses,
		})
	})
	if err != nil {
		return nil, RenderStats{}, errors.Wrapf(err, "pass %d", passNumber)
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// extractTileImage extracts a tile image from the shared pixel stats array
func (pr *ProgressiveRaytracer) extractTileImage(tile *Tile) *image.RGBA {
	bounds := tile.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			stats := &pr.pixelStats[y][x]
			if stats.SampleCount > 0 {
				tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, colorToRGBA(stats.GetColor()))
			}
		}
	}

	return tileImage
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders every pass on a background goroutine and reports
// through channels. The caller should drain all three. If options.TileUpdates
// is false, the tile channel is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)

		pr.logger.Info("starting progressive render", "passes", pr.config.MaxPasses, "tiles", len(pr.tiles))

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			if err := ctx.Err(); err != nil {
				pr.logger.Info("render cancelled", "beforePass", pass)
				errChan <- err
				return
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						pr.logger.Debug("dropped tile update", "pass", result.PassNumber, "tile", result.TileNumber)
					}
				}
			}

			img, stats, err := pr.RenderPass(ctx, pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Info("pass complete", "pass", pass, "elapsed", time.Since(startTime), "averageSamples", stats.AverageSamples)

			isLast := pass == pr.config.MaxPasses
			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// assembleCurrentImage creates an image from the current state of the shared
// pixel stats and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))
	stats := newRenderStats(pr.width*pr.height, targetSamples)

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y][x]
			img.SetRGBA(x, y, colorToRGBA(pixel.GetColor()))
			stats.addPixel(pixel.SampleCount)
		}
	}

	stats.finalize()
	return img, stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-specific sampler, kept across passes
}

// tileSeedStride spreads tile seeds apart in the generator's seed space
const tileSeedStride = 0x9E3779B97F4A7C15

// NewTile creates a new tile whose sampler is derived from seed and id
func NewTile(id int, bounds image.Rectangle, seed uint64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewRandomSampler(seed + uint64(id+1)*tileSeedStride),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed uint64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Ceiling division
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
