package outcome

// Outcome represents either a success value or a captured failure. The zero
// value is a success carrying the zero value of T.
type Outcome[T any] struct {
	value T
	err   error
}

// Success returns an outcome wrapping value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Failure returns an outcome wrapping err. The error is stored verbatim so
// that its identity survives delivery to another goroutine.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// Failed reports whether the outcome carries a failure.
func (o Outcome[T]) Failed() bool {
	return o.err != nil
}

// Err returns the captured failure, or nil on success.
func (o Outcome[T]) Err() error {
	return o.err
}

// Value returns the wrapped value on success. On failure it re-surfaces the
// ORIGINAL error value unmodified - no wrapping, no re-synthesised failure
// site - so diagnostics keep pointing at the true cause.
func (o Outcome[T]) Value() (T, error) {
	return o.value, o.err
}

// Catch executes fn and never panics: a returned error becomes a Failure and
// a panic inside fn is recovered into a *Fault that records the panic site.
func Catch[T any](fn func() (T, error)) (ret Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			ret = Failure[T](Recovered(r))
		}
	}()
	value, err := fn()
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

// Map applies fn to the success value, passing a failure through untouched.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	if o.err != nil {
		return Failure[U](o.err)
	}
	return Success(fn(o.value))
}

// Bind chains fn over the success value. Unlike Map the bound function may
// itself fail; errors returned by fn and panics raised inside it are captured
// as a Failure rather than propagated.
func Bind[T, U any](o Outcome[T], fn func(T) (U, error)) Outcome[U] {
	if o.err != nil {
		return Failure[U](o.err)
	}
	return Catch(func() (U, error) {
		return fn(o.value)
	})
}
