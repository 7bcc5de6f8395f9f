package timedcall

import (
	"fmt"
	"sort"
	"sync"
)

// Func is a bounded-call operation. It runs inside the worker process and
// its return value crosses back over the worker boundary, so the value
// must be gob-encodable.
type Func func(args Args, kwargs Kwargs) (any, error)

var registry = struct {
	mu  sync.RWMutex
	ops map[string]Func
}{ops: make(map[string]Func)}

// Register makes an operation callable by name. Registration must happen
// before WorkerMain runs (init time is the usual place) so parent and
// worker agree on the operation set. Registering a nil function or a
// duplicate name panics, like http.HandleFunc.
func Register(name string, fn Func) {
	if name == "" {
		panic("timedcall: Register with empty operation name")
	}
	if fn == nil {
		panic(fmt.Sprintf("timedcall: Register(%q) with nil function", name))
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, dup := registry.ops[name]; dup {
		panic(fmt.Sprintf("timedcall: duplicate operation %q", name))
	}
	registry.ops[name] = fn
}

func lookup(name string) (Func, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	fn, ok := registry.ops[name]
	return fn, ok
}

// Operations returns the registered operation names, sorted.
func Operations() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.ops))
	for name := range registry.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
