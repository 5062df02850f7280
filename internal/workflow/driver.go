package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

const haltNode = "halt"

type stepFunc func(context.Context, *Runtime, *State) StepResult

// Driver runs the sort loop for one storage source. Each Run builds the state
// graph pick → classify → relocate → advance, then loops back to pick while
// items remain and the step budget allows, otherwise halts.
type Driver struct {
	rt       *Runtime
	maxSteps int
}

// NewDriver validates the runtime and step budget.
func NewDriver(rt *Runtime, maxSteps int) (*Driver, error) {
	if err := rt.validate(); err != nil {
		return nil, err
	}
	if maxSteps < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, maxSteps)
	}
	return &Driver{rt: rt, maxSteps: maxSteps}, nil
}

// MaxSteps returns the step budget.
func (d *Driver) MaxSteps() int {
	return d.maxSteps
}

// Run executes one run to completion. The listing is fetched once up front;
// an empty listing halts with zero cycles. Step faults never end a run. An
// error is returned only when ctx is cancelled or the graph cannot execute.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	r := &run{
		driver: d,
		result: &Result{
			RunID:     uuid.New(),
			StartedAt: time.Now(),
		},
	}
	log := d.rt.logger().With("run_id", r.result.RunID)
	r.logger = log

	r.notify(ctx, func(rec Recorder) error {
		return rec.RunStarted(ctx, r.result.RunID, r.result.StartedAt)
	})

	s := &State{}
	if f := load(ctx, d.rt, s); f != nil {
		r.fault(ctx, f)
	}

	log.InfoContext(ctx, "run started", "pending", len(s.Pending), "max_steps", d.maxSteps)

	if len(s.Pending) > 0 {
		graph, err := d.buildGraph(r)
		if err != nil {
			return nil, fmt.Errorf("build graph: %w", err)
		}

		initial := state.New(nil).Set(KeyState, s)

		final, err := graph.Execute(ctx, initial)
		if err != nil {
			return nil, fmt.Errorf("execute graph: %w", err)
		}

		if s, err = extractState(final); err != nil {
			return nil, err
		}
	}

	r.halt(ctx, s)
	return r.result, nil
}

func (d *Driver) buildGraph(r *run) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("filer-sort")
	cfg.Observer = "noop"
	cfg.MaxIterations = 4*d.maxSteps + 8

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		step Step
		fn   stepFunc
	}{
		{StepPick, Pick},
		{StepClassify, Classify},
		{StepRelocate, Relocate},
		{StepAdvance, Advance},
	}

	for _, n := range nodes {
		if err := graph.AddNode(string(n.step), r.node(n.step, n.fn)); err != nil {
			return nil, err
		}
	}

	if err := graph.AddNode(haltNode, state.NewFunctionNode(
		func(ctx context.Context, s state.State) (state.State, error) {
			return s, nil
		},
	)); err != nil {
		return nil, err
	}

	// pick → classify → relocate → advance (unconditional)
	if err := graph.AddEdge(string(StepPick), string(StepClassify), nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge(string(StepClassify), string(StepRelocate), nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge(string(StepRelocate), string(StepAdvance), nil); err != nil {
		return nil, err
	}

	// advance → pick (while items remain within the step budget)
	if err := graph.AddEdge(string(StepAdvance), string(StepPick), d.running); err != nil {
		return nil, err
	}

	// advance → halt (exhaustion or budget)
	if err := graph.AddEdge(string(StepAdvance), haltNode, state.Not(d.running)); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint(string(StepPick)); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(haltNode); err != nil {
		return nil, err
	}

	return graph, nil
}

// running is the loop-continuation predicate evaluated after advance.
func (d *Driver) running(st state.State) bool {
	s, err := extractState(st)
	if err != nil {
		return false
	}
	return len(s.Pending) > 0 && s.StepCount < d.maxSteps
}

func extractState(st state.State) (*State, error) {
	val, ok := st.Get(KeyState)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyState)
	}

	s, ok := val.(*State)
	if !ok {
		return nil, fmt.Errorf("%s is not *State", KeyState)
	}

	return s, nil
}
