package gesture

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/teslashibe/go-panorama/pkg/events"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// mockCamera records every orientation written to it
type mockCamera struct {
	current Orientation
	writes  []Orientation
}

func (m *mockCamera) Orientation() Orientation { return m.current }

func (m *mockCamera) SetOrientation(o Orientation) {
	m.current = o
	m.writes = append(m.writes, o)
}

type countingSkipper struct {
	calls int
}

func (s *countingSkipper) SkipForward() { s.calls++ }

var (
	scene  = events.Target{ID: "scene"}
	button = events.Target{ID: "playBtn", Classes: []string{"ui-element"}}
	t0     = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 12.5, 12.5},
		{"upper bound", 39, 39},
		{"above", 120, 39},
		{"below", -400, -39},
		{"lower bound", -39, -39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clamp(tt.in, -39, 39)
			if got != tt.want {
				t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if again := clamp(got, -39, 39); again != got {
				t.Errorf("clamp is not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestOrientation_ClampAndAdd(t *testing.T) {
	o := Orientation{Yaw: 30, Pitch: -35}.Add(Orientation{Yaw: 20, Pitch: -10})

	if !floatEquals(o.Yaw, 50) || !floatEquals(o.Pitch, -45) {
		t.Fatalf("Add = %+v, want {50 -45}", o)
	}

	c := o.Clamp(DefaultLimit)
	if c.Yaw != 39 || c.Pitch != -39 {
		t.Errorf("Clamp = %+v, want {39 -39}", c)
	}
	if !c.Within(DefaultLimit) {
		t.Error("clamped orientation should be within limit")
	}
	if o.Within(DefaultLimit) {
		t.Error("unclamped orientation should not be within limit")
	}
}

func TestController_MoveAppliesSensitivity(t *testing.T) {
	cam := &mockCamera{}
	ctrl := NewController(cam, nil)

	ctrl.Start(events.Point{X: 100, Y: 100}, scene, t0)
	res := ctrl.Move(events.Point{X: 150, Y: 80})

	if !res.PreventDefault {
		t.Error("Move during an active gesture should prevent default")
	}
	if !floatEquals(cam.current.Yaw, 10) {
		t.Errorf("Yaw = %v, want 10 (50px * 0.2)", cam.current.Yaw)
	}
	if !floatEquals(cam.current.Pitch, -4) {
		t.Errorf("Pitch = %v, want -4 (-20px * 0.2)", cam.current.Pitch)
	}
}

func TestController_MoveIsIncremental(t *testing.T) {
	cam := &mockCamera{}
	ctrl := NewController(cam, nil)

	ctrl.Start(events.Point{X: 0, Y: 0}, scene, t0)
	ctrl.Move(events.Point{X: 10, Y: 0})
	ctrl.Move(events.Point{X: 20, Y: 0})

	// Each move is measured from the previous point, not from the start.
	if !floatEquals(cam.current.Yaw, 4) {
		t.Errorf("Yaw = %v, want 4", cam.current.Yaw)
	}
	st := ctrl.State()
	if st.StartX != 20 || st.StartY != 0 {
		t.Errorf("reference = (%v,%v), want (20,0)", st.StartX, st.StartY)
	}
}

func TestController_ClampsLargeDrag(t *testing.T) {
	cam := &mockCamera{current: Orientation{Yaw: 30, Pitch: -30}}
	ctrl := NewController(cam, nil)

	ctrl.Start(events.Point{X: 0, Y: 0}, scene, t0)
	ctrl.Move(events.Point{X: 1000, Y: -1000})

	if cam.current.Yaw != 39 {
		t.Errorf("Yaw = %v, want 39", cam.current.Yaw)
	}
	if cam.current.Pitch != -39 {
		t.Errorf("Pitch = %v, want -39", cam.current.Pitch)
	}
}

func TestController_RandomDragsStayInRange(t *testing.T) {
	cam := &mockCamera{}
	ctrl := NewController(cam, nil)
	rng := rand.New(rand.NewPCG(1, 2))

	ctrl.Start(events.Point{}, scene, t0)
	for i := 0; i < 2000; i++ {
		p := events.Point{X: rng.Float64()*4000 - 2000, Y: rng.Float64()*4000 - 2000}
		ctrl.Move(p)
		if !cam.current.Within(DefaultLimit) {
			t.Fatalf("move %d left range: %+v", i, cam.current)
		}
	}
}

func TestController_ExcludedTargetNeverRotates(t *testing.T) {
	cam := &mockCamera{}
	ctrl := NewController(cam, nil)

	res := ctrl.Start(events.Point{X: 10, Y: 10}, button, t0)
	if res.PreventDefault {
		t.Error("Start on a UI element must not prevent default")
	}
	ctrl.Move(events.Point{X: 300, Y: 300})
	ctrl.Move(events.Point{X: 600, Y: 0})

	if len(cam.writes) != 0 {
		t.Errorf("orientation written %d times, want 0", len(cam.writes))
	}
	if ctrl.End().PreventDefault {
		t.Error("End of an inactive gesture must not prevent default")
	}
}

func TestController_ExcludedTargetCancelsActiveGesture(t *testing.T) {
	cam := &mockCamera{}
	ctrl := NewController(cam, nil)

	ctrl.Start(events.Point{}, scene, t0)
	ctrl.Start(events.Point{}, button, t0.Add(time.Second))

	if ctrl.State().Active {
		t.Error("touch on a UI element should deactivate the gesture")
	}
}

func TestController_DoubleTap(t *testing.T) {
	tests := []struct {
		name  string
		gap   time.Duration
		skips int
	}{
		{"fast", 120 * time.Millisecond, 1},
		{"at window", 300 * time.Millisecond, 1},
		{"slow", 301 * time.Millisecond, 0},
		{"much slower", 2 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skipper := &countingSkipper{}
			ctrl := NewController(&mockCamera{}, skipper)

			if res := ctrl.Start(events.Point{}, scene, t0); res.PreventDefault {
				t.Error("first tap should not prevent default")
			}
			ctrl.End()
			res := ctrl.Start(events.Point{}, scene, t0.Add(tt.gap))

			if skipper.calls != tt.skips {
				t.Errorf("skips = %d, want %d", skipper.calls, tt.skips)
			}
			if res.PreventDefault != (tt.skips == 1) {
				t.Errorf("PreventDefault = %v", res.PreventDefault)
			}
		})
	}
}

func TestController_DoubleTapMeasuresStartToStart(t *testing.T) {
	skipper := &countingSkipper{}
	ctrl := NewController(&mockCamera{}, skipper)

	// A long drag between two starts does not matter: only start times count.
	ctrl.Start(events.Point{}, scene, t0)
	ctrl.Move(events.Point{X: 5})
	ctrl.End()
	ctrl.Start(events.Point{}, scene, t0.Add(250*time.Millisecond))

	if skipper.calls != 1 {
		t.Errorf("skips = %d, want 1", skipper.calls)
	}
	if !ctrl.State().LastStart.Equal(t0.Add(250 * time.Millisecond)) {
		t.Error("LastStart should be the most recent start time")
	}
}

func TestController_TripleTap(t *testing.T) {
	skipper := &countingSkipper{}
	ctrl := NewController(&mockCamera{}, skipper)

	ctrl.Start(events.Point{}, scene, t0)
	ctrl.Start(events.Point{}, scene, t0.Add(200*time.Millisecond))
	ctrl.Start(events.Point{}, scene, t0.Add(400*time.Millisecond))

	// Every start resets the window, so taps 2 and 3 pair up as well.
	if skipper.calls != 2 {
		t.Errorf("skips = %d, want 2", skipper.calls)
	}
	if ctrl.DoubleTaps() != 2 {
		t.Errorf("DoubleTaps = %d, want 2", ctrl.DoubleTaps())
	}
}

func TestController_ExcludedTapDoesNotArmDoubleTap(t *testing.T) {
	skipper := &countingSkipper{}
	ctrl := NewController(&mockCamera{}, skipper)

	ctrl.Start(events.Point{}, button, t0)
	ctrl.Start(events.Point{}, scene, t0.Add(100*time.Millisecond))

	if skipper.calls != 0 {
		t.Errorf("skips = %d, want 0", skipper.calls)
	}
}

func TestController_NilSkipper(t *testing.T) {
	ctrl := NewController(&mockCamera{}, nil)

	ctrl.Start(events.Point{}, scene, t0)
	res := ctrl.Start(events.Point{}, scene, t0.Add(10*time.Millisecond))

	if !res.PreventDefault {
		t.Error("double tap should prevent default even without a skipper")
	}
}

func TestController_EndPreventsDefaultOnlyWhenActive(t *testing.T) {
	ctrl := NewController(&mockCamera{}, nil)

	if ctrl.End().PreventDefault {
		t.Error("End without a gesture should be a no-op")
	}
	ctrl.Start(events.Point{}, scene, t0)
	if !ctrl.End().PreventDefault {
		t.Error("End of an active gesture should prevent default")
	}
	if ctrl.State().Active {
		t.Error("gesture should be inactive after End")
	}
}

func TestController_Options(t *testing.T) {
	cam := &mockCamera{}
	skipper := &countingSkipper{}
	ctrl := NewController(cam, skipper,
		WithSensitivity(1),
		WithLimit(10),
		WithDoubleTapWindow(50*time.Millisecond),
		WithExcludedClass("hud"),
	)

	ctrl.Start(events.Point{}, events.Target{Classes: []string{"ui-element"}}, t0)
	ctrl.Move(events.Point{X: 7, Y: 30})

	if cam.current.Yaw != 7 || cam.current.Pitch != 10 {
		t.Errorf("orientation = %+v, want {7 10}", cam.current)
	}

	ctrl.Start(events.Point{}, scene, t0.Add(100*time.Millisecond))
	if skipper.calls != 0 {
		t.Errorf("skips = %d, want 0 with a 50ms window", skipper.calls)
	}
}

func TestController_Attach(t *testing.T) {
	cam := &mockCamera{}
	skipper := &countingSkipper{}
	ctrl := NewController(cam, skipper)
	bus := events.NewBus()
	detach := ctrl.Attach(bus)

	bus.Publish(events.Event{Type: events.TouchStart, Point: events.Point{X: 0, Y: 0}, Target: scene, Time: t0})
	bus.Publish(events.Event{Type: events.TouchMove, Point: events.Point{X: 25, Y: 5}})
	bus.Publish(events.Event{Type: events.TouchEnd})
	bus.Publish(events.Event{Type: events.TouchStart, Target: scene, Time: t0.Add(100 * time.Millisecond)})

	if !floatEquals(cam.current.Yaw, 5) || !floatEquals(cam.current.Pitch, 1) {
		t.Errorf("orientation = %+v, want {5 1}", cam.current)
	}
	if skipper.calls != 1 {
		t.Errorf("skips = %d, want 1", skipper.calls)
	}

	detach()
	bus.Publish(events.Event{Type: events.TouchMove, Point: events.Point{X: 500}})
	if len(cam.writes) != 1 {
		t.Errorf("writes = %d after detach, want 1", len(cam.writes))
	}
}

func TestController_OnResult(t *testing.T) {
	skips := 0
	ctrl := NewController(&mockCamera{}, SkipperFunc(func() { skips++ }))
	bus := events.NewBus()
	ctrl.Attach(bus)

	var got []bool
	ctrl.OnResult(func(_ events.Type, res Result) {
		got = append(got, res.PreventDefault)
	})

	bus.Publish(events.Event{Type: events.TouchStart, Target: scene, Time: t0})
	bus.Publish(events.Event{Type: events.TouchMove, Point: events.Point{X: 3}})
	bus.Publish(events.Event{Type: events.TouchEnd})
	bus.Publish(events.Event{Type: events.TouchStart, Target: scene, Time: t0.Add(200 * time.Millisecond)})
	bus.Publish(events.Event{Type: events.TouchStart, Target: button, Time: t0.Add(2 * time.Second)})
	bus.Publish(events.Event{Type: events.TouchMove, Point: events.Point{X: 9}})

	want := []bool{false, true, true, true, false, false}
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d PreventDefault = %v, want %v", i, got[i], want[i])
		}
	}
	if skips != 1 {
		t.Errorf("skips = %d, want 1", skips)
	}
}
