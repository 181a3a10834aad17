package simulation

import (
	"fmt"
	"io"

	"pathfinding-sim/internal/navigation"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a run.
type Stats struct {
	Agents    int
	Arrived   int
	Halted    int
	Ticks     int
	Time      float64
	MeanSpeed float64
	StdSpeed  float64
	MaxSpeed  float64
	Distance  float64 // summed over agents
	Anomalies int
}

// Stats computes the statistics of the run so far.
func (s *Simulation) Stats() Stats {
	st := Stats{Agents: len(s.agents), Ticks: s.ticks, Time: s.simulationTime}

	var speeds, distances []float64
	for _, a := range s.Agents() {
		switch {
		case a.Halted():
			st.Halted++
		case a.State() == navigation.Arrived:
			st.Arrived++
		}
		speeds = append(speeds, a.speeds...)
		distances = append(distances, a.traveled)
		st.Anomalies += a.body.Anomalies()
	}
	if len(speeds) > 0 {
		st.MeanSpeed, st.StdSpeed = stat.PopMeanStdDev(speeds, nil)
		st.MaxSpeed = floats.Max(speeds)
	}
	st.Distance = floats.Sum(distances)
	return st
}

// Fprint writes a human readable summary.
func (st Stats) Fprint(w io.Writer) {
	fmt.Fprintln(w, "--- Run Statistics ---")
	fmt.Fprintf(w, "Agents: %d (arrived %d, halted %d)\n", st.Agents, st.Arrived, st.Halted)
	fmt.Fprintf(w, "Ticks: %d, simulated time %.2fs\n", st.Ticks, st.Time)
	fmt.Fprintf(w, "Speed: mean %.3f, stddev %.3f, max %.3f\n", st.MeanSpeed, st.StdSpeed, st.MaxSpeed)
	fmt.Fprintf(w, "Distance traveled: %.3f\n", st.Distance)
	fmt.Fprintf(w, "Numeric anomalies: %d\n", st.Anomalies)
}
