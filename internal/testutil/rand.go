package testutil

import "sync"

// ScriptedRand replays queued values and falls back to fixed defaults once
// a queue is exhausted.
type ScriptedRand struct {
	mu       sync.Mutex
	floats   []float64
	ints     []int
	Float    float64
	Int      int
	Float64s int
	Intns    int
}

// NewScriptedRand returns a source that yields float for every Float64 call
// and 0 for every Intn call unless values are queued.
func NewScriptedRand(float float64) *ScriptedRand {
	return &ScriptedRand{Float: float}
}

// QueueFloats appends values returned by upcoming Float64 calls.
func (r *ScriptedRand) QueueFloats(v ...float64) *ScriptedRand {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floats = append(r.floats, v...)
	return r
}

// QueueInts appends values returned by upcoming Intn calls, reduced modulo n.
func (r *ScriptedRand) QueueInts(v ...int) *ScriptedRand {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, v...)
	return r
}

func (r *ScriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Float64s++
	if len(r.floats) > 0 {
		v := r.floats[0]
		r.floats = r.floats[1:]
		return v
	}
	return r.Float
}

func (r *ScriptedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Intns++
	v := r.Int
	if len(r.ints) > 0 {
		v = r.ints[0]
		r.ints = r.ints[1:]
	}
	if n <= 0 {
		return 0
	}
	return ((v % n) + n) % n
}
