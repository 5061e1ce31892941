// Package pipeline sequences the analysis stages through a declarative
// dependency graph and carries their outputs forward as shared context.
package pipeline

import (
	"fmt"
	"log"
	"time"
)

// Stage is one node of the dependency graph. Run receives the shared
// context holding every upstream stage's outputs.
type Stage struct {
	Name string
	// Deps names the stages whose outputs must be available before this
	// stage runs.
	Deps []string
	Run  func(ctx *Context) error
}

// Graph is a directed acyclic graph of stages. Execution is sequential
// today (one stage fully completes before a dependent starts), but the
// representation does not preclude running independent branches
// concurrently later.
type Graph struct {
	stages []Stage
	byName map[string]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{byName: make(map[string]int)}
}

// Add registers a stage. Stage names must be unique.
func (g *Graph) Add(stage Stage) error {
	if stage.Name == "" {
		return fmt.Errorf("stage name must not be empty")
	}
	if _, exists := g.byName[stage.Name]; exists {
		return fmt.Errorf("duplicate stage %q", stage.Name)
	}
	g.byName[stage.Name] = len(g.stages)
	g.stages = append(g.stages, stage)
	return nil
}

// Order returns the stages in a topological order consistent with the
// declared dependencies. Insertion order breaks ties so execution is
// deterministic. Unknown dependencies and cycles are rejected.
func (g *Graph) Order() ([]Stage, error) {
	indegree := make([]int, len(g.stages))
	dependents := make([][]int, len(g.stages))

	for i, stage := range g.stages {
		for _, dep := range stage.Deps {
			j, ok := g.byName[dep]
			if !ok {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", stage.Name, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range g.stages {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]Stage, 0, len(g.stages))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, g.stages[i])

		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	if len(ordered) != len(g.stages) {
		return nil, fmt.Errorf("dependency cycle among stages")
	}
	return ordered, nil
}

// Run executes every stage sequentially in topological order. A stage
// returning an error is fatal: the graph halts and no further stage runs.
// Stages that only record per-item anomalies return nil and unblock their
// dependents normally.
func (g *Graph) Run(ctx *Context) error {
	ordered, err := g.Order()
	if err != nil {
		return err
	}

	for _, stage := range ordered {
		start := time.Now()
		if err := stage.Run(ctx); err != nil {
			return fmt.Errorf("stage %q: %w", stage.Name, err)
		}
		log.Printf("[PIPELINE] stage %q done in %s", stage.Name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
