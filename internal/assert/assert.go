package assert

//
// assert.go
// based on https://antonz.org/do-not-testify/
//

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

// Equal asserts that got is equal to want.
func Equal[T any](tb testing.TB, got, want T) bool {
	tb.Helper()

	if !areEqual(got, want) {
		tb.Errorf("got: %#v; want: %#v", got, want)

		return false
	}

	return true
}

// NotEqual asserts that got is no equal to want.
func NotEqual[T any](tb testing.TB, got, want T) bool {
	tb.Helper()

	if areEqual(got, want) {
		tb.Errorf("got: %#v; want other values", got)

		return false
	}

	return true
}

// NoErr asserts that the got error is nil.
func NoErr(tb testing.TB, got error) bool {
	tb.Helper()

	if got != nil {
		tb.Errorf("got unexpected error: %#+v", got)

		return false
	}

	return true
}

// Err asserts that the got is error.
func Err(tb testing.TB, got error) bool {
	tb.Helper()

	if got == nil {
		tb.Error("got: <nil>; want: error")

		return false
	}

	return true
}

// ErrSpec asserts that the got error matches the want: substring of
// message (string), error in chain (error) or error type in chain
// (reflect.Type).
func ErrSpec(tb testing.TB, got error, want any) bool {
	tb.Helper()

	if got == nil {
		tb.Errorf("got: <nil>; want: %v", want)

		return false
	}

	if msg, ok := matchErr(got, want); !ok {
		tb.Error(msg)

		return false
	}

	return true
}

func matchErr(got error, want any) (string, bool) {
	switch w := want.(type) {
	case string:
		return fmt.Sprintf("got: %q; want: %q", got.Error(), w), strings.Contains(got.Error(), w)
	case error:
		return fmt.Sprintf("got: %T(%v); want: %T(%v)", got, got, w, w), errors.Is(got, w)
	case reflect.Type:
		return fmt.Sprintf("got: %T; want: %s", got, w), errors.As(got, reflect.New(w).Interface())
	default:
		return fmt.Sprintf("unsupported want type: %T", want), false
	}
}

// True asserts that got is true.
func True(tb testing.TB, got bool) bool {
	tb.Helper()

	if !got {
		tb.Error("got: false; want: true")
	}

	return got
}

// equaler is an interface for types with an Equal method
// (like time.Time or net.IP).
type equaler[T any] interface {
	Equal(other T) bool
}

// areEqual checks if a and b are equal.
func areEqual[T any](val1, val2 T) bool {
	// Check if both are nil.
	if isNil(val1) && isNil(val2) {
		return true
	}

	// Try to compare using an Equal method.
	if eq, ok := any(val1).(equaler[T]); ok {
		return eq.Equal(val2)
	}

	// Special case for byte slices.
	if aBytes, ok := any(val1).([]byte); ok {
		if bBytes, ok := any(val2).([]byte); ok {
			return bytes.Equal(aBytes, bBytes)
		}
	}
	// Fallback to reflective comparison.
	return reflect.DeepEqual(val1, val2)
}

// isNil checks if v is nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	// A non-nil interface can still hold a nil value,
	// so we must check the underlying value.
	rv := reflect.ValueOf(v)

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Chan,
		reflect.Func,
		reflect.Interface,
		reflect.Map,
		reflect.Pointer,
		reflect.Slice,
		reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// Len asserts that slice has expected length.
func Len[S ~[]E, E any](tb testing.TB, got S, want int) bool {
	tb.Helper()

	if len(got) != want {
		tb.Errorf("got len: %d; want: %d (%#v)", len(got), want, got)

		return false
	}

	return true
}

// Eventually asserts that cond become true before timeout.
func Eventually(tb testing.TB, timeout time.Duration, cond func() bool) bool {
	tb.Helper()

	deadline := time.Now().Add(timeout)

	for {
		if cond() {
			return true
		}

		if time.Now().After(deadline) {
			tb.Errorf("condition not met in %s", timeout)

			return false
		}

		time.Sleep(10 * time.Millisecond) //nolint:mnd
	}
}
