package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vidscope/internal/config"
	"vidscope/internal/report"
	"vidscope/internal/store"
	"vidscope/internal/workers"
)

// RegisterRunRoutes adds the analysis endpoints.
func RegisterRunRoutes(app *fiber.App, cfg *config.Config, db *store.Store) {
	app.Post("/runs", func(c *fiber.Ctx) error {
		return startRun(c, cfg)
	})
	app.Get("/runs", func(c *fiber.Ctx) error {
		return listRuns(c, db)
	})
	app.Get("/runs/:id", func(c *fiber.Ctx) error {
		return getRun(c, db)
	})
	app.Get("/runs/:id/report", func(c *fiber.Ctx) error {
		return getRunReport(c, db)
	})
}

func startRun(c *fiber.Ctx, cfg *config.Config) error {
	var payload struct {
		VideoPath  string `json:"video_path"`
		SampleRate int    `json:"sample_rate"`
	}

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if payload.VideoPath == "" {
		return c.Status(400).JSON(fiber.Map{"error": "video_path is required"})
	}
	// Reject unreadable paths up front; everything past this point is the
	// worker's recoverable-anomaly territory.
	if _, err := os.Stat(payload.VideoPath); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "video not found: " + payload.VideoPath})
	}
	if payload.SampleRate < 1 {
		payload.SampleRate = cfg.DefaultSampleRate
	}

	job := workers.Job{
		RunID:      uuid.NewString(),
		VideoPath:  payload.VideoPath,
		SampleRate: payload.SampleRate,
	}

	select {
	case workers.JobQueue <- job:
	default:
		return c.Status(503).JSON(fiber.Map{"error": "job queue full"})
	}

	return c.Status(202).JSON(fiber.Map{
		"run_id":      job.RunID,
		"sample_rate": job.SampleRate,
	})
}

func listRuns(c *fiber.Ctx, db *store.Store) error {
	if db == nil {
		return c.Status(404).JSON(fiber.Map{"error": "persistence disabled"})
	}

	runs, err := db.ListRuns(c.Context(), 50)
	if err != nil {
		return errJson(c, err)
	}
	return c.JSON(fiber.Map{"runs": runs})
}

func getRun(c *fiber.Ctx, db *store.Store) error {
	run, ok := loadRun(c, db)
	if !ok {
		return nil
	}
	return c.JSON(run)
}

func getRunReport(c *fiber.Ctx, db *store.Store) error {
	run, ok := loadRun(c, db)
	if !ok {
		return nil
	}

	narrative, err := report.Narrative(run.Summary)
	if err != nil {
		return errJson(c, err)
	}
	return c.JSON(fiber.Map{
		"run_id": run.ID,
		"report": narrative,
	})
}

// loadRun fetches the run, writing the error response itself and returning
// ok=false when the caller should stop.
func loadRun(c *fiber.Ctx, db *store.Store) (store.Run, bool) {
	if db == nil {
		c.Status(404).JSON(fiber.Map{"error": "persistence disabled"})
		return store.Run{}, false
	}

	run, err := db.GetRun(c.Context(), c.Params("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		c.Status(404).JSON(fiber.Map{"error": "run not found"})
		return store.Run{}, false
	}
	if err != nil {
		errJson(c, err)
		return store.Run{}, false
	}
	return run, true
}

func errJson(c *fiber.Ctx, err error) error {
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
