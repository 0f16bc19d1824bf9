package ascolt

// Unit is the empty success payload carried by tell handlers.
type Unit = struct{}

// Result is a two-argument sum type: it holds either a success value of type R
// or an error of type E, never both. Every handler returns one.
type Result[R any, E error] struct {
	value R
	err   E
	ok    bool
}

// Ok wraps a success value.
func Ok[R any, E error](value R) Result[R, E] {
	return Result[R, E]{value: value, ok: true}
}

// Err wraps an error value.
func Err[R any, E error](err E) Result[R, E] {
	return Result[R, E]{err: err}
}

// OkUnit is the success result of a tell handler.
func OkUnit[E error]() Result[Unit, E] {
	return Ok[Unit, E](Unit{})
}

// IsOk reports whether the result holds a success value.
func (r Result[R, E]) IsOk() bool {
	return r.ok
}

// Value returns the success value, or the zero value of R for an error result.
func (r Result[R, E]) Value() R {
	return r.value
}

// ErrValue returns the error value, or the zero value of E for a success result.
func (r Result[R, E]) ErrValue() E {
	return r.err
}

// Unwrap converts the result into Go's (value, error) convention.
func (r Result[R, E]) Unwrap() (R, error) {
	if r.ok {
		return r.value, nil
	}
	return r.value, r.err
}

// Discard drops the success payload, keeping only the outcome. Tell semantics
// deliver no response value, so tell bindings route through Discard.
func (r Result[R, E]) Discard() Result[Unit, E] {
	if r.ok {
		return OkUnit[E]()
	}
	return Err[Unit, E](r.err)
}
