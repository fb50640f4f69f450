package selfdep

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrEmptyMemo is returned by IdMemo.Value when nothing has ever been
// stored. A resolve always stores before reading on a miss, so seeing this
// outside direct memo use indicates a programming error.
var ErrEmptyMemo = errors.New("memo value accessed before first store")

// MissingOwnerError is returned when a wrapper is invoked with no owner
// available: the wrapper was built without a bound owner and the call did
// not supply a usable "self" argument.
type MissingOwnerError struct {
	Method reflect.Type
}

func (e *MissingOwnerError) Error() string {
	return fmt.Sprintf("missing self argument calling %s", formatFuncDebug(e.Method))
}

// NoSelfParameterError is returned when a method has no owner parameter to
// rewrite: it takes no parameters at all, or its first parameter is a
// context.Context.
type NoSelfParameterError struct {
	Method reflect.Type
}

func (e *NoSelfParameterError) Error() string {
	return fmt.Sprintf("method has no self parameter: %s", formatFuncDebug(e.Method))
}

// OwnerTypeError is returned when a descriptor is resolved with an owner
// that cannot stand in for the method's owner parameter.
type OwnerTypeError struct {
	Owner reflect.Type
	Want  reflect.Type
}

func (e *OwnerTypeError) Error() string {
	return fmt.Sprintf("owner type %v is not assignable to %v", e.Owner, e.Want)
}

// ArgumentError is returned when a named argument cannot be bound to the
// wrapped method's parameters.
type ArgumentError struct {
	Name   string
	Method reflect.Type
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q: %s calling %s", e.Name, e.Reason, formatFuncDebug(e.Method))
}

// SignatureError is returned when a method's signature cannot back a
// descriptor, or when the declaration options disagree with it. These are
// declaration problems found lazily on the first resolve, or eagerly by
// Validate.
type SignatureError struct {
	Method reflect.Type
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("unusable method %s: %s", formatFuncDebug(e.Method), e.Reason)
}
