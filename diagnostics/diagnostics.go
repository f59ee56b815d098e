// Package diagnostics provides monotonic event counters for debugging the
// rtsp2webrtc clients. Counters are a side-channel: nothing in the library
// consults them for control flow.
package diagnostics

import "sync"

// Diagnostics is a set of named monotonic counters. The zero value is not
// usable; call New. A nil *Diagnostics is a valid no-op sink, so callers may
// leave diagnostics unset on a client.
type Diagnostics struct {
	mu       sync.Mutex
	counters map[string]int64
}

func New() *Diagnostics {
	return &Diagnostics{
		counters: make(map[string]int64),
	}
}

// Increment adds 1 to the counter for the specified key/event.
func (d *Diagnostics) Increment(key string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.counters[key]++
	d.mu.Unlock()
}

// Snapshot returns a copy of all counters recorded so far.
func (d *Diagnostics) Snapshot() map[string]int64 {
	if d == nil {
		return map[string]int64{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int64, len(d.counters))
	for k, v := range d.counters {
		out[k] = v
	}
	return out
}

// Reset clears all counters. Intended for tests and debug tooling.
func (d *Diagnostics) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.counters = make(map[string]int64)
	d.mu.Unlock()
}

// Registry groups Diagnostics instances by name, one per subsystem
// ("discovery", "web", "webrtc" in the default wiring).
type Registry struct {
	mu sync.Mutex
	m  map[string]*Diagnostics
}

func NewRegistry() *Registry {
	return &Registry{
		m: make(map[string]*Diagnostics),
	}
}

// Get returns the Diagnostics registered under name, creating it on first use.
// A nil *Registry returns nil, which is itself a no-op sink.
func (r *Registry) Get(name string) *Diagnostics {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.m[name]
	if !ok {
		d = New()
		r.m[name] = d
	}
	return d
}

// Snapshot returns copies of every subsystem's counters, keyed by subsystem
// name. Subsystems with no recorded events are omitted.
func (r *Registry) Snapshot() map[string]map[string]int64 {
	if r == nil {
		return map[string]map[string]int64{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]map[string]int64, len(r.m))
	for name, d := range r.m {
		snapshot := d.Snapshot()
		if len(snapshot) == 0 {
			continue
		}
		out[name] = snapshot
	}
	return out
}

// Reset clears every subsystem's counters.
func (r *Registry) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.m {
		d.Reset()
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide Registry used when a client is constructed
// without an explicit one.
func Default() *Registry {
	return defaultRegistry
}
