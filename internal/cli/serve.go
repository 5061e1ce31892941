package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"vidscope/internal/api"
	"vidscope/internal/store"
	"vidscope/internal/workers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		caps, err := loadCapabilities(cfg)
		if err != nil {
			return err
		}
		defer caps.close()

		var db *store.Store
		if cfg.DatabaseURL != "" {
			db, err = store.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close(cmd.Context())
		} else {
			log.Println("DATABASE_URL not set, run persistence disabled")
		}

		processor := &workers.Processor{
			Detector:   caps.detector,
			Emotion:    caps.emotion,
			Landmarker: caps.pose,
			Store:      db,
		}
		processor.Start()

		server := api.NewServer(cfg, db)
		log.Println("Server running on http://localhost:" + cfg.Port)
		return server.Listen(":" + cfg.Port)
	},
}
