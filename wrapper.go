package selfdep

import (
	"context"
	"fmt"
	"reflect"

	"github.com/gburgyan/go-timing"
)

// Args is the named-argument set for invoking a wrapper. The name "self"
// is special: it overrides the wrapper's bound owner and is consumed
// before binding. Every other name must match a declared value parameter;
// absent parameters of pointer-like types bind their zero value, the rest
// are required.
type Args map[string]any

// Wrapper is the callable produced for one (owner, owner type) pair. It
// closes over the bound owner and forwards calls to the method, supplying
// the owner as the first argument. The calling convention is fixed when
// the wrapper is built; see CallShape.
type Wrapper struct {
	// The method being wrapped
	method reflect.Value
	// Cached analysis of the method type
	info *methodInfo
	// The externally visible parameter metadata, "self" rewritten
	sig *Signature
	// The bound owner; invalid for unbound access
	owner reflect.Value
	// The plain-function surface, built once
	fn any
	// Short method name for timing and diagnostics
	name string
}

func newWrapper(method reflect.Value, info *methodInfo, sig *Signature, owner reflect.Value) *Wrapper {
	w := &Wrapper{
		method: method,
		info:   info,
		sig:    sig,
		owner:  owner,
		name:   funcName(method),
	}
	w.fn = w.makeFunc()
	return w
}

// Shape returns the wrapper's calling convention.
func (w *Wrapper) Shape() CallShape {
	return w.info.shape
}

// Signature returns the wrapper's parameter metadata: the method's
// parameter list with the owner parameter replaced by the injectable
// "self" parameter.
func (w *Wrapper) Signature() *Signature {
	return w.sig
}

func (w *Wrapper) String() string {
	return fmt.Sprintf("%s %s %s", w.name, w.info.shape, w.sig)
}

// Call invokes the wrapped method with named arguments. The owner is
// resolved first: an explicit args["self"] value wins, then the owner
// bound at build time; with neither the call fails with MissingOwnerError
// before any of the method's code runs. ctx fills every context parameter
// the method declares; methods without one ignore it.
//
// The result is the method's value result. For the iterator shapes that
// is the lazily produced sequence itself, fresh on every call; errors the
// production encounters surface wherever the method chose to put them,
// not from Call.
func (w *Wrapper) Call(ctx context.Context, args Args) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	in, err := w.bind(ctx, args)
	if err != nil {
		return nil, err
	}
	return w.invoke(ctx, in)
}

// Func returns the wrapper as a plain function value: the method's own
// signature with the owner parameter removed. It can be type-asserted to
// the narrowed function type and called directly, or registered with
// anything expecting an ordinary function. Calling it without a bound
// owner reports MissingOwnerError through the method's error result, or
// panics when the method has none to carry it.
func (w *Wrapper) Func() any {
	return w.fn
}

// bind builds the method's full argument list from the caller's context
// and named arguments.
func (w *Wrapper) bind(ctx context.Context, args Args) ([]reflect.Value, error) {
	t := w.method.Type()

	// Resolve the owner before anything else
	owner := w.owner
	if selfArg, ok := args["self"]; ok {
		if selfArg == nil {
			return nil, &MissingOwnerError{Method: t}
		}
		ov := reflect.ValueOf(selfArg)
		if !canAssign(ov.Type(), w.info.ownerType) {
			return nil, &ArgumentError{Name: "self", Method: t, Reason: fmt.Sprintf("%v is not assignable to %v", ov.Type(), w.info.ownerType)}
		}
		owner = ov
	}
	if !owner.IsValid() {
		return nil, &MissingOwnerError{Method: t}
	}

	in := make([]reflect.Value, len(w.info.params))
	in[0] = owner
	for _, i := range w.info.ctxParams {
		in[i] = reflect.ValueOf(ctx)
	}

	for name, val := range args {
		if name == "self" {
			continue
		}
		i, ok := w.sig.byName[name]
		if !ok {
			return nil, &ArgumentError{Name: name, Method: t, Reason: "unknown argument"}
		}
		v, reason := valueFor(val, w.info.params[i])
		if reason != "" {
			return nil, &ArgumentError{Name: name, Method: t, Reason: reason}
		}
		in[i] = v
	}

	for _, i := range w.info.valueParams {
		if in[i].IsValid() {
			continue
		}
		pt := w.info.params[i]
		if !nilable(pt) {
			return nil, &ArgumentError{Name: w.sig.params[i].Name, Method: t, Reason: "required argument missing"}
		}
		in[i] = reflect.Zero(pt)
	}

	return in, nil
}

// invoke calls the method, optionally under a timing context, and
// untangles the value and error results.
func (w *Wrapper) invoke(ctx context.Context, in []reflect.Value) (any, error) {
	if EnableTiming == TimingCalls {
		tCtx, complete := timing.Start(ctx, w.name)
		defer complete()
		for _, i := range w.info.ctxParams {
			in[i] = reflect.ValueOf(context.Context(tCtx))
		}
	}

	out := w.method.Call(in)
	if w.info.errIndex >= 0 {
		if errVal := out[w.info.errIndex]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}
	return out[w.info.resultIndex].Interface(), nil
}

// makeFunc builds the plain-function surface with the owner parameter
// removed from the method's signature.
func (w *Wrapper) makeFunc() any {
	t := w.method.Type()

	ins := make([]reflect.Type, 0, t.NumIn()-1)
	for i := 1; i < t.NumIn(); i++ {
		ins = append(ins, t.In(i))
	}
	outs := make([]reflect.Type, 0, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		outs = append(outs, t.Out(i))
	}

	narrowed := reflect.FuncOf(ins, outs, false)
	fn := reflect.MakeFunc(narrowed, func(callArgs []reflect.Value) []reflect.Value {
		if !w.owner.IsValid() {
			err := &MissingOwnerError{Method: t}
			if w.info.errIndex >= 0 {
				return errorResults(w.info, err)
			}
			panic(err)
		}
		in := make([]reflect.Value, 0, len(callArgs)+1)
		in = append(in, w.owner)
		in = append(in, callArgs...)
		return w.method.Call(in)
	})
	return fn.Interface()
}

// errorResults builds a result list carrying err in the error slot and
// zero values everywhere else.
func errorResults(info *methodInfo, err error) []reflect.Value {
	out := make([]reflect.Value, len(info.results))
	for i, rt := range info.results {
		out[i] = reflect.Zero(rt)
	}
	out[info.errIndex] = reflect.ValueOf(err)
	return out
}

// valueFor adapts a named argument to the parameter type. The empty
// reason string means success.
func valueFor(arg any, t reflect.Type) (reflect.Value, string) {
	if arg == nil {
		if !nilable(t) {
			return reflect.Value{}, fmt.Sprintf("nil is not assignable to %v", t)
		}
		return reflect.Zero(t), ""
	}
	v := reflect.ValueOf(arg)
	if !canAssign(v.Type(), t) {
		return reflect.Value{}, fmt.Sprintf("%v is not assignable to %v", v.Type(), t)
	}
	return v, ""
}

// nilable reports whether t has a usable zero value for an absent
// argument.
func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	}
	return false
}
