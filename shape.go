package selfdep

import (
	"context"
	"reflect"
)

// CallShape identifies the calling convention of a wrapped method. It is
// determined once, from the method's signature, when a wrapper is built;
// calls never re-probe the shape.
type CallShape int

const (
	// ShapeFunc is a plain synchronous method.
	ShapeFunc CallShape = iota

	// ShapeSeq is a method whose result is an iterator function in the
	// iter.Seq family. The sequence is lazy and restarts on each call.
	ShapeSeq

	// ShapeCtxFunc is a method that takes a context.Context and blocks
	// until done. Calling it is the wait; it suspends wherever the method
	// itself does.
	ShapeCtxFunc

	// ShapeCtxSeq is a method that takes a context.Context and returns an
	// iterator whose production may block.
	ShapeCtxSeq
)

func (s CallShape) String() string {
	switch s {
	case ShapeFunc:
		return "func"
	case ShapeSeq:
		return "seq"
	case ShapeCtxFunc:
		return "ctx-func"
	case ShapeCtxSeq:
		return "ctx-seq"
	}
	return "unknown"
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// classifyShape determines the calling convention of a method type. The
// checks run in a fixed order and are mutually exclusive: iterator result
// without a context parameter, iterator result with one, context parameter
// alone, then plain.
func classifyShape(t reflect.Type) CallShape {
	seq := t.NumOut() >= 1 && isSeqType(t.Out(0))
	ctx := hasContextParam(t)
	switch {
	case seq && !ctx:
		return ShapeSeq
	case seq && ctx:
		return ShapeCtxSeq
	case ctx:
		return ShapeCtxFunc
	default:
		return ShapeFunc
	}
}

// isSeqType reports whether t has the shape of an iterator function:
// func(yield func(...) bool) with no results and at most two yield
// arguments. This matches iter.Seq and iter.Seq2 as well as the
// no-argument form accepted by range-over-func.
func isSeqType(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.IsVariadic() {
		return false
	}
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	y := t.In(0)
	return y.Kind() == reflect.Func && !y.IsVariadic() &&
		y.NumIn() <= 2 && y.NumOut() == 1 && y.Out(0).Kind() == reflect.Bool
}

// hasContextParam reports whether any parameter after the owner is a
// context.Context. The owner position is excluded: a method whose first
// parameter is a context has no owner at all, which is reported
// separately.
func hasContextParam(t reflect.Type) bool {
	for i := 1; i < t.NumIn(); i++ {
		if t.In(i) == contextType {
			return true
		}
	}
	return false
}
