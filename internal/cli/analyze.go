package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pipeline"
	"vidscope/internal/pose"
	"vidscope/internal/report"
	"vidscope/internal/store"
	"vidscope/internal/video"
)

var analyzeOpts struct {
	InputPath   string
	SampleRate  int
	RequireFace bool
	Save        bool
	Narrative   bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a video file and print the run summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.InputPath, "input", "i", "", "Path to video")
	analyzeCmd.Flags().IntVarP(&analyzeOpts.SampleRate, "sample-rate", "n", 0, "Analyze every Nth frame (default from env)")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.RequireFace, "require-face", false, "Anomalize frames with zero detected faces")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.Save, "save", false, "Persist the run to the database")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.Narrative, "narrative", false, "Generate a narrative report of the run")
	analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command) error {
	sampleRate := analyzeOpts.SampleRate
	if sampleRate < 1 {
		sampleRate = cfg.DefaultSampleRate
	}

	caps, err := loadCapabilities(cfg)
	if err != nil {
		return err
	}
	defer caps.close()

	// Probe the source once for the progress bar total; the run opens its
	// own handle so the sampled sequence stays non-restartable.
	probe, err := video.OpenFile(analyzeOpts.InputPath)
	if err != nil {
		return err
	}
	totalFrames := probe.FrameCount()
	probe.Close()

	sampled := int64(0)
	if totalFrames > 0 {
		sampled = int64((totalFrames + sampleRate - 1) / sampleRate)
	}
	bar := progressbar.Default(sampled, "analyzing")

	analysis, err := pipeline.NewAnalysis(pipeline.Options{
		Open: func() (video.Source, error) {
			return video.OpenFile(analyzeOpts.InputPath)
		},
		SampleRate:    sampleRate,
		Detector:      caps.detector,
		Emotion:       caps.emotion,
		Landmarker:    caps.pose,
		FaceConfig:    face.Config{RequireFace: analyzeOpts.RequireFace},
		EmotionConfig: emotion.DefaultConfig(),
		PoseConfig:    pose.DefaultConfig(),
		Progress: func(frameIndex int) {
			bar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	result, err := analysis.Run()
	if err != nil {
		return err
	}
	bar.Finish()

	fmt.Println()
	fmt.Print(report.FormatStats(result.Summary))

	if len(result.Anomalies) > 0 {
		fmt.Printf("\nanomaly log (%d entries):\n", len(result.Anomalies))
		for _, a := range result.Anomalies {
			subject := ""
			if a.SubjectID >= 0 {
				subject = fmt.Sprintf(" face=%d", a.SubjectID)
			}
			fmt.Printf("  frame %d (%.2fs)%s: %s %s\n", a.FrameIndex, a.Timestamp, subject, a.Kind, a.Detail)
		}
	}

	if analyzeOpts.Save {
		if err := saveRun(cmd, result); err != nil {
			return err
		}
	}

	if analyzeOpts.Narrative {
		narrative, err := report.Narrative(result.Summary)
		if err != nil {
			return fmt.Errorf("narrative generation: %w", err)
		}
		fmt.Printf("\n%s\n", narrative)
	}

	return nil
}

func saveRun(cmd *cobra.Command, result pipeline.Result) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("--save requires DATABASE_URL")
	}

	db, err := store.New(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close(cmd.Context())

	run := store.Run{
		ID:        uuid.NewString(),
		VideoPath: analyzeOpts.InputPath,
		Summary:   result.Summary,
		Anomalies: result.Anomalies,
	}
	if err := db.SaveRun(cmd.Context(), run); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nsaved run %s\n", run.ID)
	return nil
}
