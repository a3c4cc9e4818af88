package backburner

import (
	"reflect"
	"time"
)

// Callable is the canonical shape a resolved [Work.Method] is normalized
// to before invocation. Scheduling entry points accept looser shapes (bare
// funcs, a method name string resolved against Target) and normalize them
// through [resolveCallable] at the entry boundary, per the polymorphic
// argument handling this package's design calls for.
type Callable func(args ...any) (any, error)

// resolveCallable normalizes method into a [Callable], resolving a string
// method name against target by reflection. It accepts the handful of func
// shapes callers naturally reach for, matching method.apply(target, args)
// semantics as closely as Go's static typing allows.
func resolveCallable(target, method any) (Callable, error) {
	switch m := method.(type) {
	case nil:
		return nil, newTypeError("method must not be nil")
	case Callable:
		return m, nil
	case func():
		return func(args ...any) (any, error) { m(); return nil, nil }, nil
	case func() error:
		return func(args ...any) (any, error) { return nil, m() }, nil
	case func(...any):
		return func(args ...any) (any, error) { m(args...); return nil, nil }, nil
	case func(...any) error:
		return func(args ...any) (any, error) { return nil, m(args...) }, nil
	case func(...any) any:
		return func(args ...any) (any, error) { return m(args...), nil }, nil
	case string:
		return resolveMethodByName(target, m)
	default:
		return reflectCallable(method)
	}
}

// resolveMethodByName looks up a method named name on target's value or
// pointer receiver and wraps it as a [Callable] via reflection.
func resolveMethodByName(target any, name string) (Callable, error) {
	if target == nil {
		return nil, newTypeError("cannot resolve method %q on nil target", name)
	}
	v := reflect.ValueOf(target)
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, newTypeError("target has no method %q", name)
	}
	return reflectMethodCallable(m), nil
}

// targetHasMethod reports whether target exposes a method named name,
// used by the polymorphic parsers to disambiguate a trailing string
// argument from a plain string payload argument.
func targetHasMethod(target any, name string) bool {
	if target == nil {
		return false
	}
	v := reflect.ValueOf(target)
	return v.MethodByName(name).IsValid()
}

// reflectCallable wraps an arbitrary func value via reflection, used for
// method shapes that don't match one of resolveCallable's fast paths (e.g.
// a func with concrete, non-any parameter types).
func reflectCallable(method any) (Callable, error) {
	v := reflect.ValueOf(method)
	if v.Kind() != reflect.Func {
		return nil, newTypeError("method must be a function or method name, got %T", method)
	}
	return reflectMethodCallable(v), nil
}

// reflectMethodCallable builds a [Callable] over a bound reflect.Value func,
// converting args positionally to the target signature where possible.
func reflectMethodCallable(fn reflect.Value) Callable {
	return func(args ...any) (any, error) {
		t := fn.Type()
		variadic := t.IsVariadic()
		in := make([]reflect.Value, 0, len(args))
		for i, a := range args {
			var pt reflect.Type
			switch {
			case variadic && i >= t.NumIn()-1:
				pt = t.In(t.NumIn() - 1).Elem()
			case i < t.NumIn():
				pt = t.In(i)
			default:
				// more args than the target accepts; stop feeding them in.
				break
			}
			if pt == nil {
				break
			}
			in = append(in, coerceReflectArg(a, pt))
		}
		out := fn.Call(in)
		return unpackCallResults(out)
	}
}

// coerceReflectArg adapts a loosely typed argument to the reflect.Type a
// target function parameter declares, falling back to a raw ValueOf when no
// coercion is needed or possible.
func coerceReflectArg(a any, pt reflect.Type) reflect.Value {
	if a == nil {
		return reflect.Zero(pt)
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(pt) {
		return v
	}
	if v.Type().ConvertibleTo(pt) {
		return v.Convert(pt)
	}
	return v
}

// unpackCallResults reduces a reflect.Call result slice to the (any, error)
// shape a [Callable] returns: the last result is treated as an error if it
// implements the error interface, the first (if any) as the return value.
func unpackCallResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if err, ok := last.Interface().(error); ok {
		if len(out) > 1 {
			return out[0].Interface(), err
		}
		return nil, err
	}
	return out[0].Interface(), nil
}

// isCallableValue reports whether v is a shape [resolveCallable] accepts
// directly (i.e. not a string method name).
func isCallableValue(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case Callable, func(), func() error, func(...any), func(...any) error, func(...any) any:
		return true
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}

// coerceDuration interprets v as a millisecond count, per the "coercable
// number" language used throughout the polymorphic argument rules.
func coerceDuration(v any) (time.Duration, bool) {
	switch n := v.(type) {
	case time.Duration:
		return n, true
	case int:
		return time.Duration(n) * time.Millisecond, true
	case int32:
		return time.Duration(n) * time.Millisecond, true
	case int64:
		return time.Duration(n) * time.Millisecond, true
	case float32:
		return time.Duration(float64(n) * float64(time.Millisecond)), true
	case float64:
		return time.Duration(n * float64(time.Millisecond)), true
	default:
		return 0, false
	}
}

// methodIdentity returns a comparable key for method, used by once-dedup
// and cancellation lookups. Functions are identified by their code pointer,
// so closures built from the same function literal share one identity;
// strings are identified by value.
func methodIdentity(method any) (any, bool) {
	switch m := method.(type) {
	case string:
		return m, true
	case nil:
		return nil, false
	default:
		v := reflect.ValueOf(method)
		if v.Kind() != reflect.Func {
			return nil, false
		}
		return v.Pointer(), true
	}
}

// firstTwo applies the shared two-argument disambiguation rule used by
// later/schedule/debounce/throttle: given the first two positional
// arguments, decide whether the pair is (target, method) or a bare method
// possibly followed by a wait, per §4.5/§4.6's second-argument tests.
//
// consumed reports how many of the two inputs were absorbed into
// (target, method, wait); the caller treats the rest as call arguments.
func firstTwo(a0, a1 any, haveSecond bool) (target, method any, wait time.Duration, hasWait bool, consumed int) {
	if !haveSecond {
		return nil, a0, 0, false, 1
	}
	if isCallableValue(a1) {
		return a0, a1, 0, false, 2
	}
	if s, ok := a1.(string); ok && targetHasMethod(a0, s) {
		return a0, s, 0, false, 2
	}
	if d, ok := coerceDuration(a1); ok {
		return nil, a0, d, true, 2
	}
	return nil, a0, 0, false, 1
}

// parseLaterArgs implements the polymorphic argument rules for `later`
// (§4.5): 0 args is a no-op, 1 arg is a bare method, 2+ disambiguates a
// leading target/method pair and a trailing wait.
func parseLaterArgs(args []any) (target, method any, callArgs []any, wait time.Duration, ok bool, err error) {
	switch len(args) {
	case 0:
		return nil, nil, nil, 0, false, nil
	case 1:
		return nil, args[0], nil, 0, true, nil
	}

	rest := args
	if d, isNum := coerceDuration(rest[len(rest)-1]); isNum && len(rest) >= 3 {
		wait = d
		rest = rest[:len(rest)-1]
	}

	var a1 any
	haveSecond := len(rest) >= 2
	if haveSecond {
		a1 = rest[1]
	}
	t, m, w, hasWait, consumed := firstTwo(rest[0], a1, haveSecond)
	if hasWait && wait == 0 {
		wait = w
	}
	if m == nil {
		return nil, nil, nil, 0, false, newTypeError("later: could not resolve a method from arguments")
	}
	return t, m, rest[consumed:], wait, true, nil
}

// rateArgs is the normalized form of a debounce/throttle call.
type rateArgs struct {
	target    any
	method    any
	callArgs  []any
	wait      time.Duration
	immediate bool
}

// parseRateArgs implements the shared polymorphic argument rule for
// debounce/throttle (§4.6): (target, method, ...args, wait [, immediate]).
// defaultImmediate supplies the immediate value when the caller omits it
// (true for throttle, false for debounce).
func parseRateArgs(args []any, defaultImmediate bool) (rateArgs, error) {
	if len(args) < 2 {
		return rateArgs{}, newTypeError("expected at least (target, method), got %d arguments", len(args))
	}

	rest := args
	immediate := defaultImmediate
	if b, ok := rest[len(rest)-1].(bool); ok {
		immediate = b
		rest = rest[:len(rest)-1]
	}
	if len(rest) == 0 {
		return rateArgs{}, newTypeError("missing wait duration")
	}
	wait, ok := coerceDuration(rest[len(rest)-1])
	if !ok {
		return rateArgs{}, newTypeError("expected a wait duration, got %T", rest[len(rest)-1])
	}
	rest = rest[:len(rest)-1]
	if len(rest) == 0 {
		return rateArgs{}, newTypeError("missing target/method")
	}

	var a1 any
	haveSecond := len(rest) >= 2
	if haveSecond {
		a1 = rest[1]
	}
	t, m, _, _, consumed := firstTwo(rest[0], a1, haveSecond)
	if m == nil {
		return rateArgs{}, newTypeError("debounce/throttle: could not resolve a method from arguments")
	}
	return rateArgs{
		target:    t,
		method:    m,
		callArgs:  rest[consumed:],
		wait:      wait,
		immediate: immediate,
	}, nil
}
