package pipeline

import (
	"fmt"
	"log"

	"vidscope/internal/aggregate"
	"vidscope/internal/anomaly"
	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pose"
	"vidscope/internal/video"
)

// Options configures one analysis run. All parameters are explicit; the
// pipeline reads no ambient state.
type Options struct {
	// Open opens the video source. A failure here is fatal for the run.
	Open func() (video.Source, error)
	// SampleRate keeps every SampleRate-th frame, must be >= 1.
	SampleRate int

	Detector   face.Detector
	Emotion    emotion.Model
	Landmarker pose.Landmarker

	FaceConfig    face.Config
	EmotionConfig emotion.Config
	PoseConfig    pose.Config

	// Progress, when set, is called once per sampled frame during the
	// sample stage.
	Progress func(frameIndex int)
}

// Result is everything one completed run produced.
type Result struct {
	Summary   aggregate.RunSummary
	Anomalies []anomaly.Anomaly
}

// Analysis is one configured, runnable pipeline execution.
type Analysis struct {
	graph   *Graph
	ctx     *Context
	tracker *anomaly.Tracker
}

// NewAnalysis wires the five stages into a dependency graph:
//
//	sample → localize → classify_emotions ┐
//	sample → classify_activity            ├→ aggregate
//
// The face and activity branches have no dependency on each other.
func NewAnalysis(opts Options) (*Analysis, error) {
	if opts.Open == nil {
		return nil, fmt.Errorf("video source opener is required")
	}
	if opts.Detector == nil || opts.Emotion == nil || opts.Landmarker == nil {
		return nil, fmt.Errorf("all three capabilities are required")
	}
	if opts.SampleRate < 1 {
		return nil, fmt.Errorf("sample rate must be >= 1, got %d", opts.SampleRate)
	}

	tracker := anomaly.NewTracker()
	localizer := face.NewLocalizer(opts.Detector, tracker, opts.FaceConfig)
	emotionClassifier := emotion.NewClassifier(opts.Emotion, tracker, opts.EmotionConfig)
	activityClassifier := pose.NewClassifier(opts.Landmarker, tracker, opts.PoseConfig)

	graph := NewGraph()

	stages := []Stage{
		{
			Name: "sample",
			Run: func(ctx *Context) error {
				source, err := opts.Open()
				if err != nil {
					return err
				}

				sampler, err := video.NewSampler(source, opts.SampleRate, tracker)
				if err != nil {
					source.Close()
					return err
				}
				defer sampler.Close()

				for {
					frame, ok := sampler.Next()
					if !ok {
						break
					}
					ctx.Frames = append(ctx.Frames, frame)
					if opts.Progress != nil {
						opts.Progress(frame.Index)
					}
				}
				log.Printf("[PIPELINE] sampled %d frame(s)", len(ctx.Frames))
				return nil
			},
		},
		{
			Name: "localize",
			Deps: []string{"sample"},
			Run: func(ctx *Context) error {
				for _, frame := range ctx.Frames {
					ctx.Regions = append(ctx.Regions, localizer.Localize(frame)...)
				}
				return nil
			},
		},
		{
			Name: "classify_emotions",
			Deps: []string{"sample", "localize"},
			Run: func(ctx *Context) error {
				for _, region := range ctx.Regions {
					img, ok := ctx.FrameImage(region.FrameIndex)
					if !ok {
						// Regions only come from sampled frames; a miss here
						// means the context was assembled wrong.
						return fmt.Errorf("no frame image for region face_id=%d frame=%d",
							region.FaceID, region.FrameIndex)
					}
					if obs, ok := emotionClassifier.Classify(region, img); ok {
						ctx.Emotions = append(ctx.Emotions, obs)
					}
				}
				return nil
			},
		},
		{
			Name: "classify_activity",
			Deps: []string{"sample"},
			Run: func(ctx *Context) error {
				for _, frame := range ctx.Frames {
					ctx.Activities = append(ctx.Activities, activityClassifier.Classify(frame))
				}
				return nil
			},
		},
		{
			Name: "aggregate",
			Deps: []string{"classify_emotions", "classify_activity"},
			Run: func(ctx *Context) error {
				ctx.Summary = aggregate.Aggregate(
					len(ctx.Frames), ctx.Regions, ctx.Emotions, ctx.Activities, tracker.All())
				return nil
			},
		},
	}

	for _, stage := range stages {
		if err := graph.Add(stage); err != nil {
			return nil, err
		}
	}

	return &Analysis{
		graph:   graph,
		ctx:     &Context{},
		tracker: tracker,
	}, nil
}

// Run executes the graph. On a fatal error (the source cannot be opened)
// no Result is produced; every recoverable failure instead lands in the
// Result's anomaly log.
func (a *Analysis) Run() (Result, error) {
	if err := a.graph.Run(a.ctx); err != nil {
		return Result{}, err
	}
	return Result{
		Summary:   a.ctx.Summary,
		Anomalies: a.tracker.All(),
	}, nil
}
