package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/integrator"
	"github.com/df07/go-diffuse-pathtracer/pkg/renderer"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

const writeWait = 10 * time.Second

// Message is one frame sent over the render websocket
type Message struct {
	Type string `json:"type"` // "console", "tile", "pass", "error", "complete"
	Data any    `json:"data,omitempty"`
}

// TileUpdate represents a single finished tile
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate represents a finished pass with the full image so far
type PassUpdate struct {
	RenderID       string  `json:"renderId"`
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	PrimitiveCount int     `json:"primitiveCount"`
	IsComplete     bool    `json:"isComplete"`
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender upgrades to a websocket and streams a progressive render.
// Closing the socket from the client cancels the render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readUntilClosed(conn, cancel)

	// Single writer goroutine; websocket connections allow one concurrent writer
	events := make(chan Message, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeMessages(conn, events)
	}()

	renderID := uuid.NewString()
	consoleChan := make(chan ConsoleMessage, 50)
	logger := slog.New(NewConsoleHandler(consoleChan, s.logger.Handler())).With("render", renderID)

	consoleCtx, stopConsole := context.WithCancel(ctx)
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(consoleCtx, consoleChan, events)
	}()

	s.render(ctx, events, req, renderID, logger)

	stopConsole()
	consoleWG.Wait()
	close(events)
	<-writerDone
}

// render runs the pipeline and feeds its results to events
func (s *Server) render(ctx context.Context, events chan<- Message, req *RenderRequest, renderID string, logger *slog.Logger) {
	pipeline, err := s.setupRenderingPipeline(req, logger)
	if err != nil {
		s.handleError(ctx, events, err.Error())
		return
	}

	logger.Info("render started", "scene", pipeline.Scene.Name, "width", req.Width, "height", req.Height, "maxSamples", req.MaxSamples)

	startTime := time.Now()
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})
	s.handleRenderingEvents(ctx, events, passChan, tileChan, errChan, pipeline.Scene, req, renderID, startTime)
}

// readUntilClosed consumes client frames so control messages are processed,
// and cancels the render once the client goes away
func (s *Server) readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeMessages writes every event to the socket until events is closed.
// After a failed write the remaining events are drained and discarded.
func (s *Server) writeMessages(conn *websocket.Conn, events <-chan Message) {
	broken := false
	for msg := range events {
		if broken {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			s.logger.Error("failed to marshal message", "type", msg.Type, "error", err)
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("client disconnected", "error", err)
			broken = true
		}
	}
	if !broken {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
	}
}

// streamConsoleMessages forwards console messages until ctx is done
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, events chan<- Message) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			select {
			case events <- Message{Type: "console", Data: consoleMsg}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}
		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger *slog.Logger) (*RenderingPipeline, error) {
	sceneObj, err := s.loadScene(req.Scene)
	if err != nil {
		return nil, err
	}

	config := renderer.ProgressiveConfig{
		TileSize:           DefaultTileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: req.MaxSamples,
		MaxPasses:          req.MaxPasses,
		NumWorkers:         0, // Auto-detect
		Seed:               req.Seed,
	}

	integ := integrator.NewPathTracingIntegrator(req.MaxDepth, sceneObj.Sky)
	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj, integ, req.Width, req.Height, config, logger)
	if err != nil {
		return nil, err
	}
	return &RenderingPipeline{
		Scene:     sceneObj,
		Raytracer: raytracer,
	}, nil
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, events chan<- Message,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	sc *scene.Scene, req *RenderRequest, renderID string, startTime time.Time) {

	for passChan != nil || tileChan != nil || errChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, events, passResult, req, sc, renderID, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, events, tileResult)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			s.handleError(ctx, events, "Rendering failed: "+err.Error())
			return

		case <-ctx.Done():
			return
		}
	}

	send(ctx, events, Message{Type: "complete", Data: "Rendering completed"})
}

// handlePassComplete sends the image and statistics of a finished pass
func (s *Server) handlePassComplete(ctx context.Context, events chan<- Message, passResult renderer.PassResult, req *RenderRequest, sc *scene.Scene, renderID string, startTime time.Time) {
	imageData, err := imageToBase64PNG(passResult.Image)
	if err != nil {
		s.logger.Error("failed to encode pass image", "pass", passResult.PassNumber, "error", err)
		return
	}

	send(ctx, events, Message{Type: "pass", Data: PassUpdate{
		RenderID:       renderID,
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		ImageData:      imageData,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalPixels:    passResult.Stats.TotalPixels,
		TotalSamples:   passResult.Stats.TotalSamples,
		AverageSamples: passResult.Stats.AverageSamples,
		MaxSamples:     passResult.Stats.MaxSamples,
		MinSamples:     passResult.Stats.MinSamples,
		MaxSamplesUsed: passResult.Stats.MaxSamplesUsed,
		PrimitiveCount: sc.PrimitiveCount(),
		IsComplete:     passResult.IsLast,
	}})
}

// handleTileUpdate sends a finished tile
func (s *Server) handleTileUpdate(ctx context.Context, events chan<- Message, tileResult renderer.TileCompletionResult) {
	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		s.logger.Error("failed to encode tile image", "tileX", tileResult.TileX, "tileY", tileResult.TileY, "error", err)
		return
	}

	send(ctx, events, Message{Type: "tile", Data: TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}})
}

// handleError sends an error event
func (s *Server) handleError(ctx context.Context, events chan<- Message, message string) {
	s.logger.Warn("render error", "error", message)
	send(ctx, events, Message{Type: "error", Data: message})
}

func send(ctx context.Context, events chan<- Message, msg Message) {
	select {
	case events <- msg:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "failed to encode png")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
