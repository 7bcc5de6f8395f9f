package timedcall

import (
	"encoding/gob"
	"time"
)

// Args holds the positional arguments for a bounded call. Every value
// must be a gob-encodable concrete type known to both sides of the worker
// boundary; see RegisterType.
type Args []any

// KV is one keyword argument for a bounded call.
type KV struct {
	Key   string
	Value any
}

// Kwargs is an ordered list of keyword arguments. A slice rather than a
// map so error messages render arguments in the order the caller wrote
// them.
type Kwargs []KV

// Get returns the value for key and whether it was present.
func (kw Kwargs) Get(key string) (any, bool) {
	for _, kv := range kw {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// request travels parent -> worker over the worker's stdin.
type request struct {
	Op     string
	Args   Args
	Kwargs Kwargs
}

// response travels worker -> parent over the worker's stdout. Exactly one
// frame is ever written per call.
type response struct {
	Value    any
	Failed   bool
	Panicked bool
	ErrMsg   string
}

// RegisterType makes a concrete type usable as an argument or result of a
// bounded call. It must run on both sides of the boundary, which re-exec
// guarantees when called from init or before timedcall.WorkerMain.
func RegisterType(value any) {
	gob.Register(value)
}

func init() {
	// Common scalar and container types are usable without an explicit
	// RegisterType call.
	for _, v := range []any{
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0),
		false, "", []byte(nil),
		[]any(nil), map[string]any(nil),
		time.Duration(0), time.Time{},
	} {
		gob.Register(v)
	}
}
