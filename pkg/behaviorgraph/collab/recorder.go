package collab

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Call is one recorded collaborator invocation.
type Call struct {
	Method string // e.g. "Dialog.Type"
	Args   []any
}

// String formats the call as Method(arg, arg).
func (c Call) String() string {
	s := c.Method + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(a)
	}
	return s + ")"
}

// Recorder implements every collaborator interface and records calls in
// order. Set Err to make every call fail after being recorded.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	Err error
}

// Services returns a bundle backed by r.
func (r *Recorder) Services() Services {
	return Services{Dialog: r, Camera: r, Audio: r, Scenes: r}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Methods returns the method names of the recorded calls.
func (r *Recorder) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Method
	}
	return out
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *Recorder) record(method string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
	return r.Err
}

func (r *Recorder) Open(context.Context) error  { return r.record("Dialog.Open") }
func (r *Recorder) Close(context.Context) error { return r.record("Dialog.Close") }

func (r *Recorder) Type(_ context.Context, text string, autoAdvance bool) error {
	return r.record("Dialog.Type", text, autoAdvance)
}

func (r *Recorder) Shake(_ context.Context, duration, delay time.Duration, intensity float64) error {
	return r.record("Camera.Shake", duration, delay, intensity)
}

func (r *Recorder) Focus(_ context.Context, target string) error {
	return r.record("Camera.Focus", target)
}

func (r *Recorder) Play(_ context.Context, name string) error {
	return r.record("Audio.Play", name)
}

func (r *Recorder) PlayDelayed(_ context.Context, name string, delay time.Duration) error {
	return r.record("Audio.PlayDelayed", name, delay)
}

func (r *Recorder) Transition(_ context.Context, scene, spawn string) error {
	return r.record("Scenes.Transition", scene, spawn)
}
