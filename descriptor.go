package selfdep

import (
	"fmt"
	"reflect"
	"strings"
)

// Descriptor exposes one method as a resolvable, cached, injectable
// callable. Construction stores only the method and its options;
// classification, metadata and wrapper construction all happen on the
// first resolve. Each descriptor owns a single-slot IdMemo, so the
// wrapper for the most recently resolved (owner, owner type) pair is
// replayed on repeat access and alternating owners rebuild on each
// switch.
//
// A descriptor is the attribute-access analog for this package: where a
// language with instance attributes would intercept the access, callers
// here resolve explicitly with the owner in hand and get back the same
// wrapper the interception would have produced.
type Descriptor struct {
	// The wrapped method
	method reflect.Value
	// The declared producer of the owner, nil when none was given
	factory *Dependency
	// Declared names for the method's value parameters
	names []string
	// Single-slot wrapper cache keyed by (owner, owner type) identity
	memo IdMemo[*Wrapper]
}

// ResolveFor returns the wrapper for an (owner, ownerType) pair, building
// it on the first access and replaying it from the memo afterwards.
//
// owner may be nil for unbound access: the wrapper then carries no bound
// owner and calls must supply an explicit "self" argument. ownerType
// stands in for the declaring type at an attribute access; it becomes the
// type of the rewritten "self" parameter and, when no factory was
// declared, its producer. It must be the method's owner parameter type,
// or implement it when the owner parameter is an interface.
func (d *Descriptor) ResolveFor(owner any, ownerType reflect.Type) (*Wrapper, error) {
	key := d.memo.Key(owner, ownerType)
	if w, ok := d.memo.lookup(key); ok {
		return w, nil
	}
	w, err := d.build(owner, ownerType)
	if err != nil {
		return nil, err
	}
	return d.memo.Store(key, w), nil
}

// ResolveWithError returns the wrapper for owner, deriving the owner type
// from the owner value, or from the method's owner parameter when owner
// is nil.
func (d *Descriptor) ResolveWithError(owner any) (*Wrapper, error) {
	var ownerType reflect.Type
	if owner != nil {
		ownerType = reflect.TypeOf(owner)
	} else {
		info, err := methodInfoOf(d.method.Type())
		if err != nil {
			return nil, err
		}
		ownerType = info.ownerType
	}
	return d.ResolveFor(owner, ownerType)
}

// Resolve is like ResolveWithError but panics on failure. The errors it
// can hit are declaration problems surfacing on the first access, so this
// is the convenient form when the declaration is known good.
func (d *Descriptor) Resolve(owner any) *Wrapper {
	w, err := d.ResolveWithError(owner)
	if err != nil {
		panic(err)
	}
	return w
}

// Validate checks the declaration without building a wrapper: the method
// shape must be usable, the declared parameter names must fit, and a
// declared factory must produce the owner type. The same problems
// otherwise surface lazily on the first resolve.
func (d *Descriptor) Validate() error {
	info, err := methodInfoOf(d.method.Type())
	if err != nil {
		return err
	}
	source, err := d.selfSource(info, info.ownerType)
	if err != nil {
		return err
	}
	_, err = newMethodSignature(d.method.Type(), info, info.ownerType, d.names, source)
	return err
}

// build constructs the wrapper for a cache miss: classify the method,
// settle what produces "self", rewrite the parameter metadata, and bind
// the owner.
func (d *Descriptor) build(owner any, ownerType reflect.Type) (*Wrapper, error) {
	t := d.method.Type()
	info, err := methodInfoOf(t)
	if err != nil {
		return nil, err
	}
	if ownerType == nil || !canAssign(ownerType, info.ownerType) {
		return nil, &OwnerTypeError{Owner: ownerType, Want: info.ownerType}
	}

	source, err := d.selfSource(info, ownerType)
	if err != nil {
		return nil, err
	}
	sig, err := newMethodSignature(t, info, ownerType, d.names, source)
	if err != nil {
		return nil, err
	}

	var ov reflect.Value
	if owner != nil {
		ov = reflect.ValueOf(owner)
		if !canAssign(ov.Type(), info.ownerType) {
			return nil, &OwnerTypeError{Owner: ov.Type(), Want: info.ownerType}
		}
	}
	return newWrapper(d.method, info, sig, ov), nil
}

// selfSource decides what produces "self" for the injection framework:
// the declared factory when one was given, otherwise the resolved owner
// type itself.
func (d *Descriptor) selfSource(info *methodInfo, ownerType reflect.Type) (*Dependency, error) {
	if d.factory == nil {
		return Depends(ownerType), nil
	}
	switch producer := d.factory.Producer.(type) {
	case reflect.Type:
		if !canAssign(producer, info.ownerType) {
			return nil, &SignatureError{Method: d.method.Type(), Reason: fmt.Sprintf("factory type %v does not produce %v", producer, info.ownerType)}
		}
	default:
		ft := reflect.TypeOf(producer)
		if producer == nil || ft.Kind() != reflect.Func {
			return nil, &SignatureError{Method: d.method.Type(), Reason: "factory is not a function"}
		}
		if ft.NumOut() < 1 || !canAssign(ft.Out(0), info.ownerType) {
			return nil, &SignatureError{Method: d.method.Type(), Reason: fmt.Sprintf("factory %s does not produce %v", formatFuncDebug(ft), info.ownerType)}
		}
	}
	return d.factory, nil
}

// Status is a diagnostic tool that returns a string describing the state
// of the descriptor: the method signature, its shape, the factory if any,
// and the currently memoized wrapper.
func (d *Descriptor) Status() string {
	result := strings.Builder{}
	t := d.method.Type()

	result.WriteString(fmt.Sprintf("method: %s", formatFuncDebug(t)))
	if info, err := methodInfoOf(t); err == nil {
		result.WriteString(fmt.Sprintf(" - shape: %s", info.shape))
	} else {
		result.WriteString(fmt.Sprintf(" - invalid: %v", err))
	}
	if d.factory != nil {
		result.WriteString(fmt.Sprintf(" - factory: %s", d.factory))
	}

	if w, err := d.memo.Value(); err == nil {
		result.WriteString(fmt.Sprintf("\nwrapper: %s", w))
	} else {
		result.WriteString("\nwrapper: -")
	}
	return result.String()
}
