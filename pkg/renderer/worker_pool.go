package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int            // Index of the tile in the grid
	PixelStats    [][]PixelStats // Shared pixel stats array to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool renders tiles on a bounded number of goroutines
type WorkerPool struct {
	tiles      *TileRenderer
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// A non-positive count uses one worker per CPU.
func NewWorkerPool(tiles *TileRenderer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		tiles:      tiles,
		numWorkers: numWorkers,
	}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Render runs every task and calls onResult on the calling goroutine as
// tiles complete. Tiles never overlap, so workers write to the shared pixel
// stats without locking. Cancelling ctx stops tiles that have not started.
func (wp *WorkerPool) Render(ctx context.Context, tasks []TileTask, onResult func(TileResult)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	results := make(chan TileResult, len(tasks))
	done := make(chan error, 1)

	go func() {
		for _, task := range tasks {
			if gctx.Err() != nil {
				break
			}
			task := task
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				stats := wp.tiles.RenderTileBounds(task.Tile.Bounds, task.PixelStats, task.Tile.Sampler, task.TargetSamples)
				results <- TileResult{TaskID: task.TaskID, Stats: stats}
				return nil
			})
		}
		err := g.Wait()
		if err == nil {
			err = ctx.Err()
		}
		close(results)
		done <- err
	}()

	for result := range results {
		if onResult != nil {
			onResult(result)
		}
	}

	return <-done
}
