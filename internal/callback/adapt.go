package callback

import (
	"context"
	"fmt"

	"github.com/goccy/go-reflect"

	"github.com/riverine/ripple/internal/world"
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	worldType = reflect.TypeOf((*world.World)(nil))
	errType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Adapt builds a run-only Callback from a plain function. The signature
// is validated once, at adapt time, not per invocation.
//
// Supported parameters, in any combination and order: context.Context and
// *world.World. The function may return nothing or a single error.
//
//	Adapt(func() {...})
//	Adapt(func(w *world.World) error {...})
//	Adapt(func(ctx context.Context, w *world.World) error {...})
//
// Adapted callbacks have a no-op Initialize; pair with Funcs when an
// explicit initialization step is needed.
func Adapt(fn any) (Callback, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("adapt: want a function, got %T", fn)
	}

	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if in != ctxType && in != worldType {
			return nil, fmt.Errorf("adapt: unsupported parameter %d: %s", i, in)
		}
	}

	switch t.NumOut() {
	case 0:
		// No return value - treated as always succeeding.
	case 1:
		if !t.Out(0).Implements(errType) {
			return nil, fmt.Errorf("adapt: return value must be error, got %s", t.Out(0))
		}
	default:
		return nil, fmt.Errorf("adapt: at most one return value allowed, got %d", t.NumOut())
	}

	v := reflect.ValueOf(fn)

	body := func(ctx context.Context, w *world.World) error {
		args := make([]reflect.Value, t.NumIn())
		for i := 0; i < t.NumIn(); i++ {
			if t.In(i) == ctxType {
				args[i] = reflect.ValueOf(ctx)
			} else {
				args[i] = reflect.ValueOf(w)
			}
		}
		out := v.Call(args)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}

	return Funcs{Body: body}, nil
}

// MustAdapt is Adapt that panics on an unsupported signature.
// Intended for registration-time wiring where the signature is static.
func MustAdapt(fn any) Callback {
	cb, err := Adapt(fn)
	if err != nil {
		panic(err)
	}
	return cb
}
