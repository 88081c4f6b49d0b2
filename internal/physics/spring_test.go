package physics

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
)

func defaultParams() dynamo.Params {
	return dynamo.Params{Mass: 1.0, Stiffness: 0.1, Damping: 0.1, Dt: 0.1, Duration: 50}
}

func TestSimulate_Length(t *testing.T) {
	tests := []struct {
		name     string
		dt, T    float64
		expected int
	}{
		{"default", 0.1, 50, 500},
		{"non-dividing step", 0.3, 1, 3},
		{"fine", 0.01, 5, 500},
		{"decimal quotient", 0.1, 1.2, 12},
		{"short decimal", 0.1, 0.7, 7},
		{"step longer than duration", 2, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultParams()
			p.Dt, p.Duration = tt.dt, tt.T

			ts := Simulate(p)
			if len(ts.Times) != tt.expected {
				t.Errorf("expected %d times, got %d", tt.expected, len(ts.Times))
			}
			if len(ts.Elongations) != tt.expected {
				t.Errorf("expected %d elongations, got %d", tt.expected, len(ts.Elongations))
			}
		})
	}
}

func TestSimulate_LastTimeBelowDuration(t *testing.T) {
	p := defaultParams()
	p.Duration = 0.7

	ts := Simulate(p)
	if ts.Len() != 7 {
		t.Fatalf("expected 7 samples, got %d", ts.Len())
	}
	last := ts.Times[ts.Len()-1]
	if math.Abs(last-0.6) > 1e-12 {
		t.Errorf("expected last time 0.6, got %v", last)
	}
	if last >= p.Duration {
		t.Errorf("last time %v not below duration %v", last, p.Duration)
	}
}

func TestSimulate_InitialElongationIsZero(t *testing.T) {
	tests := []dynamo.Params{
		{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.1, Duration: 1},
		{Mass: 10, Stiffness: 5, Damping: 1, Dt: 0.01, Duration: 1},
		{Mass: 0.1, Stiffness: 0, Damping: 0, Dt: 1, Duration: 2},
	}

	for _, p := range tests {
		ts := Simulate(p)
		if ts.Elongations[0] != 0 {
			t.Errorf("params %+v: first elongation = %v, want exactly 0", p, ts.Elongations[0])
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	p := defaultParams()
	a := Simulate(p)
	b := Simulate(p)

	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Elongations {
		if math.Float64bits(a.Elongations[i]) != math.Float64bits(b.Elongations[i]) {
			t.Fatalf("sample %d differs: %v vs %v", i, a.Elongations[i], b.Elongations[i])
		}
		if math.Float64bits(a.Times[i]) != math.Float64bits(b.Times[i]) {
			t.Fatalf("time %d differs: %v vs %v", i, a.Times[i], b.Times[i])
		}
	}
}

func TestSimulate_FreeMotion(t *testing.T) {
	p := dynamo.Params{Mass: 1, Stiffness: 0, Damping: 0, Dt: 0.1, Duration: 10}
	ts := Simulate(p)

	for n, got := range ts.Elongations {
		z := 0.1 * float64(n) * p.Dt
		expected := math.Sqrt(1+z*z) - 1
		if math.Abs(got-expected) > 1e-12 {
			t.Errorf("step %d: elongation %.15f, expected %.15f", n, got, expected)
		}
	}
}

func TestSimulate_TimeAxis(t *testing.T) {
	t.Run("dyadic step is exact", func(t *testing.T) {
		p := dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.125, Duration: 20}
		ts := Simulate(p)
		for i := 0; i+1 < ts.Len(); i++ {
			if d := ts.Times[i+1] - ts.Times[i]; d != p.Dt {
				t.Fatalf("times[%d]-times[%d] = %v, want %v", i+1, i, d, p.Dt)
			}
		}
	})

	t.Run("decimal step", func(t *testing.T) {
		p := defaultParams()
		ts := Simulate(p)
		if ts.Times[0] != 0 {
			t.Errorf("times[0] = %v, want 0", ts.Times[0])
		}
		for i := 0; i+1 < ts.Len(); i++ {
			if d := ts.Times[i+1] - ts.Times[i]; math.Abs(d-p.Dt) > 1e-12 {
				t.Fatalf("times[%d]-times[%d] = %v, want %v", i+1, i, d, p.Dt)
			}
		}
		if last := ts.Times[ts.Len()-1]; last >= p.Duration {
			t.Errorf("last time %v not below duration %v", last, p.Duration)
		}
	})
}

func TestSimulate_DampedAmplitudeDecays(t *testing.T) {
	p := dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.1, Duration: 200}
	ts := Simulate(p)

	// roughly one radial period per window
	window := 200
	prev := math.Inf(1)
	for start := 0; start+window <= ts.Len(); start += window {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range ts.Elongations[start : start+window] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		ptp := hi - lo
		if ptp > prev {
			t.Errorf("window at t=%.1f: peak-to-peak %e grew from %e", ts.Times[start], ptp, prev)
		}
		prev = ptp
	}
}

func TestSimulate_StepRefinement(t *testing.T) {
	coarse := Simulate(dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.01, Duration: 50})
	fine := Simulate(dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.001, Duration: 50})

	if fine.Len() != 10*coarse.Len() {
		t.Fatalf("expected fine run to have 10x samples, got %d vs %d", fine.Len(), coarse.Len())
	}

	maxErr := 0.0
	for i, v := range coarse.Elongations {
		maxErr = math.Max(maxErr, math.Abs(v-fine.Elongations[i*10]))
	}
	if maxErr > 1e-3 {
		t.Errorf("coarse and fine runs diverge by %e", maxErr)
	}
}

func TestSimulate_RecordsBeforeUpdate(t *testing.T) {
	p := dynamo.Params{Mass: 2, Stiffness: 1, Damping: 0.5, Dt: 0.1, Duration: 0.25}
	ts := Simulate(p)

	s := DefaultSpring()
	f, _ := s.Force(p.Stiffness, p.Damping)
	s.Velocity = s.Velocity.Add(f.Scale(1 / p.Mass).Scale(p.Dt))
	s.Position = s.Position.Add(s.Velocity.Scale(p.Dt))

	if ts.Len() != 2 {
		t.Fatalf("expected 2 samples, got %d", ts.Len())
	}
	if ts.Elongations[1] != s.Elongation() {
		t.Errorf("sample 1 = %v, want elongation after one step %v", ts.Elongations[1], s.Elongation())
	}
}

func TestSimulate_Concurrent(t *testing.T) {
	p := defaultParams()
	ref := Simulate(p)

	var wg sync.WaitGroup
	errs := make(chan int, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := Simulate(p)
			for i := range ts.Elongations {
				if ts.Elongations[i] != ref.Elongations[i] {
					errs <- i
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for i := range errs {
		t.Errorf("concurrent run diverged at sample %d", i)
	}
}

func TestSimulate_InvalidParamsDoNotPanic(t *testing.T) {
	tests := []struct {
		name string
		p    dynamo.Params
	}{
		{"zero mass", dynamo.Params{Mass: 0, Stiffness: 0.1, Damping: 0.1, Dt: 0.1, Duration: 1}},
		{"zero step", dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0, Duration: 1}},
		{"negative step", dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: -0.1, Duration: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := Simulate(tt.p)
			if err := ts.Validate(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestSpring_RunMatchesSimulate(t *testing.T) {
	p := defaultParams()
	ref := Simulate(p)

	ts, err := DefaultSpring().Run(p)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for i := range ref.Elongations {
		if ts.Elongations[i] != ref.Elongations[i] {
			t.Fatalf("sample %d: %v vs %v", i, ts.Elongations[i], ref.Elongations[i])
		}
	}
}

func TestSpring_RunRejectsInvalidParams(t *testing.T) {
	p := defaultParams()
	p.Mass = 0
	if _, err := DefaultSpring().Run(p); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	s := DefaultSpring()
	s.RestLength = -1
	if _, err := s.Run(defaultParams()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for negative rest length, got %v", err)
	}

	s = DefaultSpring()
	s.Velocity.Y = math.Inf(1)
	if _, err := s.Run(defaultParams()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for infinite velocity, got %v", err)
	}

	s = DefaultSpring()
	s.Position.X = math.NaN()
	ts, err := s.Run(defaultParams())
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for NaN position, got %v", err)
	}
	if ts.Len() != 0 {
		t.Errorf("expected no samples, got %d", ts.Len())
	}
}

func TestSpring_DegenerateGeometry(t *testing.T) {
	t.Run("starts at anchor", func(t *testing.T) {
		s := DefaultSpring()
		s.Position = s.Anchor

		ts, err := s.Run(defaultParams())
		if !errors.Is(err, dynamo.ErrDegenerateGeometry) {
			t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
		}
		if ts.Len() != 0 {
			t.Errorf("expected no samples, got %d", ts.Len())
		}
	})

	t.Run("reaches anchor", func(t *testing.T) {
		s := DefaultSpring()
		s.Velocity = dynamo.Vec3{Y: 0.5}
		p := dynamo.Params{Mass: 1, Stiffness: 0, Damping: 0, Dt: 1, Duration: 5}

		ts, err := s.Run(p)
		var simErr *dynamo.SimulationError
		if !errors.As(err, &simErr) {
			t.Fatalf("expected *SimulationError, got %v", err)
		}
		if simErr.Step != 2 {
			t.Errorf("expected failure at step 2, got %d", simErr.Step)
		}
		if ts.Len() != 2 {
			t.Errorf("expected 2 samples before failure, got %d", ts.Len())
		}
	})
}

func TestSpring_Observer(t *testing.T) {
	p := defaultParams()
	var steps int
	var first, last float64

	obs := ObserverFunc(func(step int, t float64, s Spring, elongation float64) {
		e := s.Energy(p.Mass, p.Stiffness)
		if step == 0 {
			first = e
		}
		last = e
		steps++
	})

	if _, err := DefaultSpring().Run(p, obs); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if steps != p.Steps() {
		t.Errorf("expected %d observations, got %d", p.Steps(), steps)
	}
	if last >= first {
		t.Errorf("expected damped energy to fall, first=%e last=%e", first, last)
	}
}

func TestTrajectory(t *testing.T) {
	p := defaultParams()
	ts, positions := Trajectory(p)

	if len(positions) != ts.Len() {
		t.Fatalf("expected %d positions, got %d", ts.Len(), len(positions))
	}
	if positions[0] != DefaultPosition {
		t.Errorf("expected first position %v, got %v", DefaultPosition, positions[0])
	}

	ref := Simulate(p)
	for i, pos := range positions {
		elongation := pos.Norm() - DefaultRestLength
		if elongation != ts.Elongations[i] || ts.Elongations[i] != ref.Elongations[i] {
			t.Fatalf("sample %d: position gives %v, series has %v", i, elongation, ts.Elongations[i])
		}
	}
}

func BenchmarkSimulate(b *testing.B) {
	p := dynamo.Params{Mass: 1, Stiffness: 0.1, Damping: 0.1, Dt: 0.01, Duration: 100}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Simulate(p)
	}
}
