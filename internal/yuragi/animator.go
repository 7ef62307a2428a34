// Package yuragi drives the "fluctuation" co-animation of the two
// actuators: a cooperative, single-goroutine-per-actuator scheduler that
// issues one vector-force command per 60 Hz tick, modelling the gentle
// speed/amplitude drift the data model calls YURAGI motion.
//
// Grounded on original_source/backend/src/haptic_system/yuragi_animator.py
// ::_animate_device for the per-tick math, and on the teacher's own
// golang.org/x/sync dependency for cancellation/join plumbing.
package yuragi

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FrameRate and FrameDuration fix the animator's cooperative tick source.
const FrameRate = 60
const FrameDuration = time.Second / FrameRate

// VectorForceFunc is the actuator-command sink the animator drives; in
// production this is hapticctrl.Controller.SetVectorForce.
type VectorForceFunc func(actuator int, angleDeg, magnitude, freqHz float64) error

// Animator runs at most one task per actuator at a time.
type Animator struct {
	setVectorForce VectorForceFunc

	mu    sync.Mutex
	tasks map[int]*task
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs an Animator that issues commands through fn.
func New(fn VectorForceFunc) *Animator {
	return &Animator{setVectorForce: fn, tasks: make(map[int]*task)}
}

// Start cancels any prior task on actuator, then spawns a new one running
// preset for duration. Starting is synchronous; the spawned task runs on
// its own goroutine.
func (a *Animator) Start(actuator int, preset Preset, duration time.Duration) {
	a.mu.Lock()
	if prev, ok := a.tasks[actuator]; ok {
		prev.cancel()
		<-prev.done
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	a.tasks[actuator] = t
	a.mu.Unlock()

	go func() {
		defer close(t.done)
		runTask(ctx, actuator, preset, duration, a.setVectorForce)
	}()
}

// Stop cancels actuator's task, if any, and waits for it to finish
// (including its zero-magnitude exit command).
func (a *Animator) Stop(actuator int) {
	a.mu.Lock()
	t, ok := a.tasks[actuator]
	if ok {
		delete(a.tasks, actuator)
	}
	a.mu.Unlock()
	if !ok {
		return
	}
	t.cancel()
	<-t.done
}

// StopAll cancels every running task and waits for all of them to finish.
func (a *Animator) StopAll() {
	a.mu.Lock()
	actuators := make([]int, 0, len(a.tasks))
	for id := range a.tasks {
		actuators = append(actuators, id)
	}
	a.mu.Unlock()

	var g errgroup.Group
	for _, id := range actuators {
		id := id
		g.Go(func() error {
			a.Stop(id)
			return nil
		})
	}
	_ = g.Wait()
}

// runTask is the per-actuator task body. Cancellation is observed at each
// tick boundary; at most one extra command is issued after cancellation
// before the zero-magnitude cleanup command.
func runTask(ctx context.Context, actuator int, p Preset, duration time.Duration, setVectorForce VectorForceFunc) {
	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	start := time.Now()
	phi := 0.0

	for {
		select {
		case <-ctx.Done():
			_ = setVectorForce(actuator, 0, 0, p.CarrierHz)
			return
		case now := <-ticker.C:
			if now.Sub(start) >= duration {
				_ = setVectorForce(actuator, 0, 0, p.CarrierHz)
				return
			}
			elapsed := now.Sub(start).Seconds()

			m := 1.0
			if p.EnableSpeedModulation {
				m = clamp(1+0.8*math.Sin(2*math.Pi*0.1*elapsed)+0.5*math.Sin(2*math.Pi*0.07*elapsed+math.Pi/3), 0.1, 3.0)
			}
			phi += 2 * math.Pi * p.RotationHz * m * FrameDuration.Seconds()

			angleDeg := math.Mod(phi*180/math.Pi+p.InitialAngleDeg, 360)
			if angleDeg < 0 {
				angleDeg += 360
			}

			env := math.Sin(2*math.Pi*p.EnvelopeHz*elapsed) * p.EnvelopeDepth
			var magnitude float64
			if p.EnableAmplitudeCenterOffset {
				magnitude = clamp(p.Magnitude*(0.8+0.8*env), 0, 1)
			} else {
				magnitude = clamp(p.Magnitude*(1+env), 0, 1)
			}

			_ = setVectorForce(actuator, angleDeg, magnitude, p.CarrierHz)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
