package simulation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"pathfinding-sim/internal/graph"
	"pathfinding-sim/internal/kinematics"
	"pathfinding-sim/internal/logging"
	"pathfinding-sim/internal/navigation"
	"pathfinding-sim/internal/pathsearch"
	"pathfinding-sim/internal/world"

	"golang.org/x/sync/errgroup"
)

// TimeScalePresets are the clock speeds offered to interactive front ends.
var TimeScalePresets = []float64{1, 1.5, 2, 3}

// Simulation advances agents through a shared environment in fixed ticks.
type Simulation struct {
	env            Environment
	objects        map[string]Object // All objects in the simulation, mapped by ID
	agents         map[string]*Agent // Quick access to agents
	order          []string          // IDs in insertion order, for stable output
	simulationTime float64           // Total elapsed simulation time, scaled
	ticks          int
	tickDuration   time.Duration // Simulated time of one Run step at scale 1
	timeScale      float64

	concurrency int
	printEvery  int
	agentConfig AgentConfig
	out         io.Writer
	logger      logging.Logger
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithTimeScale multiplies every step's elapsed time.
func WithTimeScale(scale float64) Option {
	return func(s *Simulation) { s.timeScale = scale }
}

// WithConcurrency bounds how many agents update in parallel. Zero means no bound.
func WithConcurrency(n int) Option {
	return func(s *Simulation) { s.concurrency = n }
}

// WithPrintEvery prints the state every n steps during Run. Zero prints only the
// initial and final state.
func WithPrintEvery(n int) Option {
	return func(s *Simulation) { s.printEvery = n }
}

// WithAgentConfig sets the options applied to every spawned agent.
func WithAgentConfig(cfg AgentConfig) Option {
	return func(s *Simulation) { s.agentConfig = cfg }
}

// WithOutput redirects the console state dumps.
func WithOutput(w io.Writer) Option {
	return func(s *Simulation) { s.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// NewSimulation creates a new simulation over graph g and obstacle world w.
func NewSimulation(g *graph.Graph, w world.RayCaster, tickDuration time.Duration, opts ...Option) (*Simulation, error) {
	if g == nil {
		return nil, pathsearch.ErrNilGraph
	}
	if tickDuration <= 0 {
		return nil, fmt.Errorf("tick duration must be positive, got %s", tickDuration)
	}
	if w == nil {
		w = world.Empty{}
	}
	s := &Simulation{
		env:          Environment{Graph: g, World: w},
		objects:      make(map[string]Object),
		agents:       make(map[string]*Agent),
		tickDuration: tickDuration,
		timeScale:    1,
		out:          os.Stdout,
		logger:       logging.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNoOp(s.logger)
	if err := s.SetTimeScale(s.timeScale); err != nil {
		return nil, err
	}
	return s, nil
}

// Graph returns the current graph.
func (s *Simulation) Graph() *graph.Graph { return s.env.Graph }

// Time returns the elapsed simulated time in seconds.
func (s *Simulation) Time() float64 { return s.simulationTime }

// Ticks returns the number of completed steps.
func (s *Simulation) Ticks() int { return s.ticks }

// TimeScale returns the clock multiplier.
func (s *Simulation) TimeScale() float64 { return s.timeScale }

// SetTimeScale changes the clock multiplier.
func (s *Simulation) SetTimeScale(scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("time scale must be positive, got %g", scale)
	}
	s.timeScale = scale
	s.logger.Info("time scale set", "scale", scale)
	return nil
}

// SetEnvironment swaps in a rebuilt graph and world. Agents whose routes came
// from the previous graph halt with ErrStaleRoute on their next step.
func (s *Simulation) SetEnvironment(g *graph.Graph, w world.RayCaster) error {
	if g == nil {
		return pathsearch.ErrNilGraph
	}
	if w == nil {
		w = world.Empty{}
	}
	s.env = Environment{Graph: g, World: w}
	s.logger.Info("environment replaced", "graph", g.ID(), "nodes", g.Len())
	return nil
}

// AddObject adds a simulation object to the simulation.
func (s *Simulation) AddObject(obj Object) error {
	id := obj.ID()
	if _, exists := s.objects[id]; exists {
		return fmt.Errorf("object with ID %s already exists", id)
	}
	s.objects[id] = obj
	s.order = append(s.order, id)

	if a, ok := obj.(*Agent); ok {
		s.agents[id] = a
	}
	return nil
}

// AddAgent routes a new agent from start to goal and adds it. When no route
// exists the pathsearch error is returned and nothing is spawned.
func (s *Simulation) AddAgent(start, goal *graph.Node) (*Agent, error) {
	route, err := pathsearch.FindRoute(s.env.Graph, start, goal)
	if err != nil {
		return nil, fmt.Errorf("spawn agent: %w", err)
	}
	cfg := AgentConfig{
		Body:       append([]kinematics.Option{kinematics.WithLogger(s.logger)}, s.agentConfig.Body...),
		Navigation: append([]navigation.Option{navigation.WithLogger(s.logger)}, s.agentConfig.Navigation...),
	}
	a, err := NewAgent(route, s.env.World, cfg)
	if err != nil {
		return nil, fmt.Errorf("spawn agent: %w", err)
	}
	if err := s.AddObject(a); err != nil {
		return nil, err
	}
	s.logger.Info("agent spawned", "agent", a.ID(), "from", route.Start().Name, "to", route.Goal().Name,
		"waypoints", route.Len(), "cost", route.Cost)
	return a, nil
}

// AddAgentByName is AddAgent with nodes looked up by name.
func (s *Simulation) AddAgentByName(start, goal string) (*Agent, error) {
	from, ok := s.env.Graph.NodeByName(start)
	if !ok {
		return nil, fmt.Errorf("spawn agent: %w: no node named %q", pathsearch.ErrInvalidEndpoint, start)
	}
	to, ok := s.env.Graph.NodeByName(goal)
	if !ok {
		return nil, fmt.Errorf("spawn agent: %w: no node named %q", pathsearch.ErrInvalidEndpoint, goal)
	}
	return s.AddAgent(from, to)
}

// GetObject returns an object by its ID.
func (s *Simulation) GetObject(id string) (Object, bool) {
	obj, exists := s.objects[id]
	return obj, exists
}

// Agents returns all agents in the order they were added.
func (s *Simulation) Agents() []*Agent {
	agents := make([]*Agent, 0, len(s.agents))
	for _, id := range s.order {
		if a, ok := s.agents[id]; ok {
			agents = append(agents, a)
		}
	}
	return agents
}

// Step advances every object by deltaTime × time scale. Objects update
// concurrently; the first update error is returned after all have finished.
func (s *Simulation) Step(deltaTime float64) error {
	dt := deltaTime * s.timeScale

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	env := s.env
	for _, id := range s.order {
		obj := s.objects[id]
		g.Go(func() error {
			if err := obj.Update(dt, env); err != nil {
				s.logger.Warn("object update failed", "id", obj.ID(), "error", err)
				return err
			}
			return nil
		})
	}
	err := g.Wait()

	s.simulationTime += dt
	s.ticks++
	return err
}

// Done reports whether every agent has settled or halted. A simulation without
// agents is never done, so Run keeps the clock going.
func (s *Simulation) Done() bool {
	if len(s.agents) == 0 {
		return false
	}
	for _, a := range s.agents {
		if !a.Halted() && !a.Settled() {
			return false
		}
	}
	return true
}

// Run executes the simulation loop for numSteps steps, or until every agent has
// settled or halted, and returns the run statistics.
func (s *Simulation) Run(numSteps int) Stats {
	fmt.Fprintf(s.out, "Starting simulation: Nodes=%d, Agents=%d, TickDuration=%s, TimeScale=%gx\n",
		s.env.Graph.Len(), len(s.agents), s.tickDuration, s.timeScale)
	fmt.Fprintln(s.out, "Initial State:")
	s.PrintState()

	deltaTime := s.tickDuration.Seconds() // Time elapsed in each step

	for i := 0; i < numSteps; i++ {
		if err := s.Step(deltaTime); err != nil && !errors.Is(err, ErrStaleRoute) {
			s.logger.Error("step failed", "step", i+1, "error", err)
		}
		if s.printEvery > 0 && (i+1)%s.printEvery == 0 {
			fmt.Fprintf(s.out, "\n--- Simulation Step %d (Time: %.2fs) ---\n", i+1, s.simulationTime)
			for _, a := range s.Agents() {
				fmt.Fprintf(s.out, "  %s\n", a)
			}
		}
		if s.Done() {
			s.logger.Info("all agents done", "step", i+1)
			break
		}
	}

	fmt.Fprintln(s.out, "\n--- Simulation Finished ---")
	s.PrintState()
	return s.Stats()
}

// PrintState prints the current state of all agents.
func (s *Simulation) PrintState() {
	fmt.Fprintln(s.out, "--- Current Simulation State ---")
	fmt.Fprintf(s.out, "Time: %.2fs (tick %d)\n", s.simulationTime, s.ticks)
	fmt.Fprintln(s.out, "Agents:")
	agents := s.Agents()
	if len(agents) == 0 {
		fmt.Fprintln(s.out, "  None")
	}
	for _, a := range agents {
		fmt.Fprintf(s.out, "  %s\n", a) // Uses String() method
		if err := a.Err(); err != nil {
			fmt.Fprintf(s.out, "    error: %v\n", err)
		}
	}
	fmt.Fprintln(s.out, "-----------------------------")
}
