// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package monitor exposes the pipeline over HTTP: run status, manual
// triggers, and read access to the persisted dataset.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pdiddy/weather-pipeline/internal/pipeline"
	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// runTimeout bounds a manually triggered pipeline run.
const runTimeout = 10 * time.Minute

// Server is the monitoring HTTP surface. It only ever reads run state
// through snapshots; the orchestrator remains the single state writer.
type Server struct {
	app  *fiber.App
	orch *pipeline.Orchestrator
	cfg  types.PipelineConfig
	w    io.Writer
}

// New builds the monitoring server around orch. Background run output goes
// to w.
func New(cfg types.PipelineConfig, orch *pipeline.Orchestrator, w io.Writer) *Server {
	if w == nil {
		w = io.Discard
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "weather-pipeline",
			DisableStartupMessage: true,
		}),
		orch: orch,
		cfg:  cfg,
		w:    w,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/run", s.handleRun)
	api.Get("/data", s.handleData)
	api.Get("/data/latest", s.handleDataLatest)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.orch.Status())
}

// handleRun triggers a pipeline run in the background. A Failed run is
// reset automatically so the trigger always means "try again".
func (s *Server) handleRun(c *fiber.Ctx) error {
	var body struct {
		Cities []string `json:"cities"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	snap := s.orch.Status()
	if snap.Status == types.StatusRunning {
		return fiber.NewError(fiber.StatusConflict, pipeline.ErrRunInProgress.Error())
	}
	if snap.Status == types.StatusFailed {
		if err := s.orch.Reset(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := s.orch.Execute(ctx, body.Cities); err != nil {
			fmt.Fprintf(s.w, "triggered run failed: %v\n", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "pipeline run started",
	})
}

func (s *Server) handleData(c *fiber.Ctx) error {
	rows, err := s.loadRows()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"summary": summarize(rows),
		"records": rows,
	})
}

func (s *Server) handleDataLatest(c *fiber.Ctx) error {
	rows, err := s.loadRows()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"records": latestPerCity(rows),
	})
}

// loadRows reads the flat-file sink. Data endpoints are only available when
// the pipeline persists to CSV; other sinks have their own query surfaces.
func (s *Server) loadRows() ([]map[string]any, error) {
	if s.cfg.Storage.Sink != types.SinkCSV {
		return nil, fiber.NewError(fiber.StatusNotImplemented,
			fmt.Sprintf("data endpoints require the csv sink, configured sink is %s", s.cfg.Storage.Sink))
	}
	rows, err := readRows(s.cfg.Storage.CSVPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fiber.NewError(fiber.StatusNotFound, "no data extracted yet")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return rows, nil
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(port string) error {
	return s.app.Listen(":" + port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
