package container

import (
	"bytes"
	"runtime"
	"slices"
	"strconv"
	"sync"
)

// activity records, per goroutine, the bindings whose constructors are
// running and whether resolution callbacks are being fired. A constructor or
// callback that resolves again runs on the same goroutine, which is how
// re-entry is told apart from concurrent resolution.
type activity struct {
	mu         sync.Mutex
	goroutines map[uint64]*frames
}

type frames struct {
	building []string
	firing   bool
}

// enter pushes name onto the goroutine's construction stack. It fails with
// the cycle when name is already being constructed there.
func (a *activity) enter(gid uint64, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f := a.frame(gid)
	if i := slices.Index(f.building, name); i >= 0 {
		return &CyclicDependencyError{Path: append(slices.Clone(f.building[i:]), name)}
	}
	f.building = append(f.building, name)
	return nil
}

// leave pops the innermost construction of the goroutine.
func (a *activity) leave(gid uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f := a.goroutines[gid]
	if f == nil {
		return
	}
	if n := len(f.building); n > 0 {
		f.building = f.building[:n-1]
	}
	a.release(gid, f)
}

// startFiring marks the goroutine as running callbacks. It returns false
// when it already is, so callbacks never trigger themselves.
func (a *activity) startFiring(gid uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	f := a.frame(gid)
	if f.firing {
		return false
	}
	f.firing = true
	return true
}

func (a *activity) stopFiring(gid uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if f := a.goroutines[gid]; f != nil {
		f.firing = false
		a.release(gid, f)
	}
}

// frame returns the goroutine's frames, creating them (must hold mu).
func (a *activity) frame(gid uint64) *frames {
	if a.goroutines == nil {
		a.goroutines = make(map[uint64]*frames)
	}
	f := a.goroutines[gid]
	if f == nil {
		f = &frames{}
		a.goroutines[gid] = f
	}
	return f
}

// release forgets idle goroutines (must hold mu).
func (a *activity) release(gid uint64, f *frames) {
	if len(f.building) == 0 && !f.firing {
		delete(a.goroutines, gid)
	}
}

// goroutineID reads the calling goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(header, ' '); i >= 0 {
		header = header[:i]
	}
	id, _ := strconv.ParseUint(string(header), 10, 64)
	return id
}
