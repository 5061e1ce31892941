package pipeline

import (
	"fmt"
	"testing"
)

func recordingStage(name string, deps []string, trace *[]string) Stage {
	return Stage{
		Name: name,
		Deps: deps,
		Run: func(ctx *Context) error {
			*trace = append(*trace, name)
			return nil
		},
	}
}

func buildGraph(t *testing.T, stages ...Stage) *Graph {
	t.Helper()
	graph := NewGraph()
	for _, stage := range stages {
		if err := graph.Add(stage); err != nil {
			t.Fatalf("Add(%q) failed: %v", stage.Name, err)
		}
	}
	return graph
}

func TestGraphOrderRespectsDependencies(t *testing.T) {
	var trace []string
	graph := buildGraph(t,
		recordingStage("a", nil, &trace),
		recordingStage("b", []string{"a"}, &trace),
		recordingStage("c", []string{"a"}, &trace),
		recordingStage("d", []string{"b", "c"}, &trace),
	)

	if err := graph.Run(&Context{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pos := make(map[string]int)
	for i, name := range trace {
		pos[name] = i
	}
	if pos["a"] > pos["b"] || pos["a"] > pos["c"] || pos["b"] > pos["d"] || pos["c"] > pos["d"] {
		t.Errorf("dependency order violated: %v", trace)
	}
}

func TestGraphOrderIsDeterministic(t *testing.T) {
	// Independent stages run in the order they were registered.
	run := func() []string {
		var trace []string
		graph := buildGraph(t,
			recordingStage("x", nil, &trace),
			recordingStage("y", nil, &trace),
			recordingStage("z", nil, &trace),
		)
		if err := graph.Run(&Context{}); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return trace
	}

	first := run()
	for i := 0; i < 5; i++ {
		next := run()
		for j := range first {
			if next[j] != first[j] {
				t.Fatalf("order changed between runs: %v vs %v", first, next)
			}
		}
	}
	if first[0] != "x" || first[1] != "y" || first[2] != "z" {
		t.Errorf("expected registration order for independent stages, got %v", first)
	}
}

func TestGraphRejectsUnknownDependency(t *testing.T) {
	var trace []string
	graph := buildGraph(t, recordingStage("a", []string{"ghost"}, &trace))

	if _, err := graph.Order(); err == nil {
		t.Error("expected error for unknown dependency")
	}
}

func TestGraphRejectsCycle(t *testing.T) {
	var trace []string
	graph := buildGraph(t,
		recordingStage("a", []string{"b"}, &trace),
		recordingStage("b", []string{"a"}, &trace),
	)

	if _, err := graph.Order(); err == nil {
		t.Error("expected error for dependency cycle")
	}
}

func TestGraphRejectsDuplicateStage(t *testing.T) {
	var trace []string
	graph := NewGraph()
	if err := graph.Add(recordingStage("a", nil, &trace)); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := graph.Add(recordingStage("a", nil, &trace)); err == nil {
		t.Error("expected error for duplicate stage name")
	}
}

func TestGraphHaltsOnStageError(t *testing.T) {
	var trace []string
	graph := buildGraph(t,
		recordingStage("first", nil, &trace),
		Stage{
			Name: "broken",
			Deps: []string{"first"},
			Run: func(ctx *Context) error {
				return fmt.Errorf("stage blew up")
			},
		},
		recordingStage("after", []string{"broken"}, &trace),
	)

	err := graph.Run(&Context{})
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	for _, name := range trace {
		if name == "after" {
			t.Error("stage after the failure must not run")
		}
	}
}
