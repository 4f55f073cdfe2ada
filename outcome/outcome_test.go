package outcome

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatch(t *testing.T) {
	result := Catch(func() (int, error) {
		return 42, nil
	})
	assert.False(t, result.Failed())
	value, err := result.Value()
	assert.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestCatchPreservesOriginalError(t *testing.T) {
	cause := errors.New("disk on fire")
	result := Catch(func() (string, error) {
		return "", cause
	})
	assert.True(t, result.Failed())

	_, err := result.Value()
	// The original error value survives verbatim - same identity, same text.
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}

func TestCatchRecoversPanic(t *testing.T) {
	result := Catch(func() (int, error) {
		panic("kaboom")
	})
	assert.True(t, result.Failed())

	var fault *Fault
	assert.ErrorAs(t, result.Err(), &fault)
	assert.Equal(t, "kaboom", fault.Message)
	assert.Equal(t, "string", fault.Kind)
	// The origin points at the panic site, i.e. this test file.
	assert.Contains(t, fault.Origin, "outcome_test.go")
}

func TestCatchRecoversPanicWithError(t *testing.T) {
	cause := errors.New("invariant violated")
	result := Catch(func() (int, error) {
		panic(cause)
	})
	assert.True(t, result.Failed())
	// The panicking error stays reachable as the fault's cause.
	assert.ErrorIs(t, result.Err(), cause)
}

func TestMap(t *testing.T) {
	doubled := Map(Success(21), func(v int) int { return v * 2 })
	value, err := doubled.Value()
	assert.NoError(t, err)
	assert.Equal(t, 42, value)

	cause := errors.New("upstream")
	mapped := Map(Failure[int](cause), func(v int) int { return v * 2 })
	_, err = mapped.Value()
	assert.ErrorIs(t, err, cause)
}

func TestBind(t *testing.T) {
	bound := Bind(Success(2), func(v int) (string, error) {
		return strings.Repeat("x", v), nil
	})
	value, err := bound.Value()
	assert.NoError(t, err)
	assert.Equal(t, "xx", value)

	cause := errors.New("bound failure")
	failed := Bind(Success(2), func(v int) (string, error) {
		return "", cause
	})
	_, err = failed.Value()
	assert.ErrorIs(t, err, cause)

	// Panics inside the bound function become failures, not crashes.
	panicked := Bind(Success(2), func(v int) (string, error) {
		panic("bind blew up")
	})
	assert.True(t, panicked.Failed())
	var fault *Fault
	assert.ErrorAs(t, panicked.Err(), &fault)
	assert.Equal(t, "bind blew up", fault.Message)
}

func TestObserved(t *testing.T) {
	cause := errors.New("remote failure")
	observed := Observed(cause, "worker-3 reply")

	// Provenance is visible in the message but the primary cause is intact.
	assert.Contains(t, observed.Error(), "remote failure")
	assert.Contains(t, observed.Error(), "worker-3 reply")
	assert.ErrorIs(t, observed, cause)

	assert.Nil(t, Observed(nil, "anywhere"))
}
