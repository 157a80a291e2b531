package helpers

import (
	"reflect"
	"time"
)

// StrPanic panics with panicMessage when s is empty; otherwise returns s unchanged. Only s == "" is checked, callers
// trim beforehand when whitespace must be rejected too.
//
// Parameters: s - required string (routing prefix, key prefix, Redis address); panicMessage - value passed to panic.
//
// Returns: s when non-empty.
//
// Called from constructors (service.NewRouter, myredis.NewBindingStore) for required configuration strings.
func StrPanic(s string, panicMessage string) string {
	if s == "" {
		panic(panicMessage)
	}
	return s
}

// NilPanic panics with panicMessage when v is nil (nil interface, pointer, slice, map, chan or func); otherwise
// returns v with its static type preserved.
//
// Parameters: v - required dependency; panicMessage - value passed to panic.
//
// Returns: v when non-nil.
//
// Called from every constructor that takes a collaborator (monitor, binding store, router, forwarder, metrics).
func NilPanic[T any](v T, panicMessage string) T {
	if isNil(v) {
		panic(panicMessage)
	}
	return v
}

// DurationPanic panics with panicMessage when d is not positive; otherwise returns d.
//
// Called from constructors that take TTLs or timeouts (myredis.NewBindingStore).
func DurationPanic(d time.Duration, panicMessage string) time.Duration {
	if d <= 0 {
		panic(panicMessage)
	}
	return d
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
