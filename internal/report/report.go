// Package report renders a completed RunSummary into a short narrative.
// It is a consumer of the pipeline's output, not part of the pipeline.
package report

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vidscope/internal/aggregate"
)

var client *openai.Client

func init() {
	cfg := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if base := os.Getenv("OPENAI_API_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	client = openai.NewClientWithConfig(cfg)
}

// Narrative asks the model for a short plain-language report of the run.
// Degraded runs stay self-describing: the anomaly breakdown is always part
// of the prompt so the text cannot gloss over missing detections.
func Narrative(summary aggregate.RunSummary) (string, error) {
	prompt := fmt.Sprintf(`
You are a video analysis assistant. Write a concise report (2 short paragraphs max)
of the following video analysis statistics for a non-technical reader.

Mention the dominant emotions and activities with rough proportions, the face
detection rate, and explicitly call out the anomaly counts so the reader knows
how reliable the numbers are. Do not invent observations that are not in the data.

Statistics:
%s

Output plain text only, no markdown.
`, FormatStats(summary))

	resp, err := client.CreateChatCompletion(
		context.Background(),
		openai.ChatCompletionRequest{
			Model: openai.GPT4Dot1Nano,
			Messages: []openai.ChatCompletionMessage{
				{Role: "user", Content: prompt},
			},
		},
	)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// FormatStats renders the summary as stable, human-readable lines. Used
// both for the narrative prompt and for CLI output.
func FormatStats(summary aggregate.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "frames analyzed: %d\n", summary.FramesAnalyzed)
	fmt.Fprintf(&b, "faces detected: %d (detection rate %.2f)\n", summary.TotalFaces, summary.DetectionRate)
	fmt.Fprintf(&b, "poses detected: %d, hands detected: %d\n", summary.PoseDetections, summary.HandDetections)

	fmt.Fprintf(&b, "emotions:%s\n", formatCounts(summary.EmotionDistribution))
	fmt.Fprintf(&b, "activities:%s\n", formatCounts(summary.ActivityDistribution))

	anomalies := make(map[string]int, len(summary.AnomalyCounts))
	for kind, count := range summary.AnomalyCounts {
		anomalies[string(kind)] = count
	}
	fmt.Fprintf(&b, "anomalies:%s\n", formatCounts(anomalies))

	return b.String()
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return " none"
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%d", k, counts[k])
	}
	return b.String()
}
