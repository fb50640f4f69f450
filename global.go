package selfdep

import (
	"context"
	"fmt"
	"iter"
	"reflect"
)

type TimingMode int

const (
	// TimingDisable will disable timing for all wrapper calls.
	TimingDisable TimingMode = iota

	// TimingCalls will start a timing context for each wrapper invocation made
	// through Call, nesting the method's own work under it. The caller's context
	// should carry a timing root. For the iterator shapes this times the
	// construction of the sequence; production runs under the caller.
	TimingCalls
)

var EnableTiming = TimingDisable

// Option is a functional option for configuring a Descriptor.
type Option func(*Descriptor)

// WithFactory declares the producer of the owner: a callable the
// surrounding framework can invoke to build "self" when no instance is at
// hand. It accepts the producer function itself or a Dependency already
// wrapping one; the latter keeps the producer's declared parameter names.
func WithFactory(factory any) Option {
	return func(d *Descriptor) {
		if dep, ok := factory.(*Dependency); ok {
			d.factory = dep
			return
		}
		d.factory = &Dependency{Producer: factory}
	}
}

// WithParamNames names the method's value parameters, in order, making
// them addressable in Args and visible in the signature metadata. Context
// parameters are always named "ctx" and the owner is always "self";
// unnamed parameters fall back to arg1, arg2, ...
func WithParamNames(names ...string) Option {
	return func(d *Descriptor) {
		d.names = append([]string(nil), names...)
	}
}

// SelfDependent declares a method as self-dependent. The returned
// Descriptor builds, caches, and hands out per-owner wrappers whose
// "self" parameter the surrounding framework can inject from the declared
// factory or from the owner type.
//
// method must be a function whose first parameter is the owner instance;
// everything else about the signature is checked lazily on the first
// resolve, or eagerly through Validate.
//
// Example:
//
//	type Account struct{ limit float64 }
//
//	var Withdraw = SelfDependent(func(a *Account, amount float64) (float64, error) {
//	    // implementation
//	}, WithParamNames("amount"))
//
//	w, err := Withdraw.ResolveWithError(account)
//	res, err := w.Call(ctx, Args{"amount": 25.0})
func SelfDependent(method any, opts ...Option) *Descriptor {
	mv := reflect.ValueOf(method)
	if method == nil || mv.Kind() != reflect.Func {
		panic(fmt.Sprintf("self-dependent method must be a function, got %T", method))
	}
	d := &Descriptor{method: mv}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CallAs invokes the wrapper and asserts its result to R.
func CallAs[R any](ctx context.Context, w *Wrapper, args Args) (R, error) {
	res, err := w.Call(ctx, args)
	if err != nil {
		var zero R
		return zero, err
	}
	r, ok := res.(R)
	if !ok {
		var zero R
		return zero, &SignatureError{Method: w.method.Type(), Reason: fmt.Sprintf("result is %T, not %v", res, reflect.TypeFor[R]())}
	}
	return r, nil
}

// SeqOf adapts an iterator result of Call to a typed iter.Seq. It accepts
// any result whose dynamic type is iterator shaped with a single produced
// value assignable to V, regardless of the iterator type the method
// declared.
func SeqOf[V any](result any) (iter.Seq[V], error) {
	if result == nil {
		return nil, &SignatureError{Reason: "result is not an iterator function"}
	}
	v := reflect.ValueOf(result)
	if !isSeqType(v.Type()) {
		return nil, &SignatureError{Method: v.Type(), Reason: "result is not an iterator function"}
	}
	yieldType := v.Type().In(0)
	if yieldType.NumIn() != 1 {
		return nil, &SignatureError{Method: v.Type(), Reason: "iterator does not produce single values"}
	}
	if want := reflect.TypeFor[V](); !canAssign(yieldType.In(0), want) {
		return nil, &SignatureError{Method: v.Type(), Reason: fmt.Sprintf("iterator produces %v, not %v", yieldType.In(0), want)}
	}

	return func(yield func(V) bool) {
		ry := reflect.MakeFunc(yieldType, func(in []reflect.Value) []reflect.Value {
			return []reflect.Value{reflect.ValueOf(yield(in[0].Interface().(V)))}
		})
		v.Call([]reflect.Value{ry})
	}, nil
}
