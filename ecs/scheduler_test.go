package ecs

import "testing"

type recordingSystem struct {
	name string
	log  *[]string
	dts  []float64
}

func (r *recordingSystem) LogicUpdate(dt float64) {
	r.dts = append(r.dts, dt)
	*r.log = append(*r.log, r.name+":logic")
}

func (r *recordingSystem) PhysicsUpdate(dt float64) {
	r.dts = append(r.dts, dt)
	*r.log = append(*r.log, r.name+":physics")
}

func TestSchedulerFixedStepAccumulation(t *testing.T) {
	tests := []struct {
		name        string
		frames      []float64
		wantPhysics uint64
		wantFrames  uint64
	}{
		{"exact_multiple", []float64{0.5}, 2, 1},
		{"accumulates_small_frames", []float64{0.125, 0.125, 0.125, 0.125}, 2, 4},
		{"below_step", []float64{0.125}, 0, 1},
		{"clamped_backlog", []float64{10}, 3, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var log []string
			phys := &recordingSystem{name: "p", log: &log}
			s := NewScheduler(0.25, 3)
			s.AddPhysics(phys)
			for _, dt := range tc.frames {
				s.Advance(dt)
			}
			if s.PhysicsTicks() != tc.wantPhysics {
				t.Fatalf("expected %d physics ticks, got %d", tc.wantPhysics, s.PhysicsTicks())
			}
			if s.Frames() != tc.wantFrames {
				t.Fatalf("expected %d frames, got %d", tc.wantFrames, s.Frames())
			}
			for _, dt := range phys.dts {
				if dt != 0.25 {
					t.Fatalf("physics must always see the fixed step, got %v", dt)
				}
			}
		})
	}
}

func TestSchedulerRunsPhysicsBeforeLogic(t *testing.T) {
	var log []string
	sys := &recordingSystem{name: "s", log: &log}
	s := NewScheduler(0.25, 5)
	s.AddLogic(sys)
	s.AddPhysics(sys)

	s.Advance(0.25)

	if len(log) != 2 || log[0] != "s:physics" || log[1] != "s:logic" {
		t.Fatalf("unexpected order: %v", log)
	}
	if sys.dts[1] != 0.25 {
		t.Fatalf("logic should receive the frame delta, got %v", sys.dts[1])
	}
}

func TestSchedulerIgnoresNegativeDelta(t *testing.T) {
	s := NewScheduler(0.25, 5)
	if steps := s.Advance(-1); steps != 0 || s.Frames() != 0 {
		t.Fatalf("negative delta should be ignored")
	}
}
