package selfdep

import (
	"fmt"
	"reflect"
	"strings"
)

// Dependency marks a value as produced by invoking a callable rather than
// supplied by the caller. It is the interchange convention between this
// package and the surrounding injection framework: WithFactory accepts
// one, and the rewritten "self" parameter of every wrapper carries one.
type Dependency struct {
	// Producer is invoked to produce the value. A function producer is
	// called with its own resolved parameters; a reflect.Type producer
	// designates the type itself as the source of an instance.
	Producer any

	// Names give the producer's parameters their externally visible
	// names, in order, for integration code that resolves them by name.
	// Unnamed parameters fall back to arg1, arg2, ...
	Names []string
}

// Depends declares that a value is satisfied by invoking producer. The
// optional names describe the producer's own parameters.
func Depends(producer any, names ...string) *Dependency {
	return &Dependency{Producer: producer, Names: names}
}

func (d *Dependency) String() string {
	if t, ok := d.Producer.(reflect.Type); ok {
		return fmt.Sprintf("Depends(%v)", t)
	}
	return fmt.Sprintf("Depends(%s)", formatFuncDebug(reflect.TypeOf(d.Producer)))
}

// Param describes one parameter of a wrapper: its name, its static type
// and, for injectable parameters, the dependency producing its value.
// Params are immutable.
type Param struct {
	Name   string
	Type   reflect.Type
	Source *Dependency
}

// Injectable reports whether the parameter's value comes from a declared
// dependency instead of the caller.
func (p Param) Injectable() bool {
	return p.Source != nil
}

func (p Param) String() string {
	if p.Source != nil {
		return fmt.Sprintf("%s %v = %v", p.Name, p.Type, p.Source)
	}
	return fmt.Sprintf("%s %v", p.Name, p.Type)
}

// Signature is the externally visible parameter list of a callable,
// queryable by integration code that resolves arguments by name. It is
// immutable after construction.
type Signature struct {
	params []Param
	byName map[string]int // caller-bindable name -> parameter index
}

// Params returns the parameter list in declaration order. The returned
// slice is a copy.
func (s *Signature) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Param returns the named parameter.
func (s *Signature) Param(name string) (Param, bool) {
	for _, p := range s.params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (s *Signature) String() string {
	b := strings.Builder{}
	b.WriteString("(")
	for i, p := range s.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	return b.String()
}

// SignatureOf builds the parameter metadata for an arbitrary callable, the
// same way descriptors derive metadata for their methods: context
// parameters are named "ctx", the remaining parameters take the supplied
// names in order, and names left unsupplied default to arg1, arg2, ...
func SignatureOf(fn any, names ...string) (*Signature, error) {
	t := reflect.TypeOf(fn)
	if fn == nil || t.Kind() != reflect.Func {
		return nil, &SignatureError{Method: t, Reason: "not a function"}
	}
	if err := checkParamNames(t, names); err != nil {
		return nil, err
	}

	params := make([]Param, 0, t.NumIn())
	named := 0
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if in == contextType {
			params = append(params, Param{Name: "ctx", Type: in})
			continue
		}
		params = append(params, Param{Name: valueParamName(names, named), Type: in})
		named++
	}
	if named < len(names) {
		return nil, &SignatureError{Method: t, Reason: "more parameter names than parameters"}
	}
	return newSignature(t, params)
}

// newMethodSignature builds the wrapper-facing view of a method: the owner
// parameter is replaced by a "self" parameter of the resolved owner type,
// declared injectable from source; the remaining parameters keep their
// order, with contexts named "ctx" and value parameters taking the
// declared names.
func newMethodSignature(t reflect.Type, info *methodInfo, ownerType reflect.Type, names []string, source *Dependency) (*Signature, error) {
	if err := checkParamNames(t, names); err != nil {
		return nil, err
	}

	params := make([]Param, 0, len(info.params))
	params = append(params, Param{Name: "self", Type: ownerType, Source: source})
	named := 0
	for i := 1; i < len(info.params); i++ {
		in := info.params[i]
		if in == contextType {
			params = append(params, Param{Name: "ctx", Type: in})
			continue
		}
		params = append(params, Param{Name: valueParamName(names, named), Type: in})
		named++
	}
	if named < len(names) {
		return nil, &SignatureError{Method: t, Reason: "more parameter names than value parameters"}
	}
	return newSignature(t, params)
}

// newSignature indexes the caller-bindable parameters. "self" and "ctx"
// are filled by the binder, never from Args, so they stay out of the
// index. A declared name equal to the default generated for a later,
// unnamed parameter would leave one of the two unbindable, so duplicates
// are rejected here.
func newSignature(t reflect.Type, params []Param) (*Signature, error) {
	s := &Signature{params: params, byName: make(map[string]int)}
	for i, p := range params {
		if p.Name == "self" || p.Type == contextType {
			continue
		}
		if _, taken := s.byName[p.Name]; taken {
			return nil, &SignatureError{Method: t, Reason: fmt.Sprintf("parameter name %q collides with a generated default", p.Name)}
		}
		s.byName[p.Name] = i
	}
	return s, nil
}

func valueParamName(names []string, pos int) string {
	if pos < len(names) {
		return names[pos]
	}
	return fmt.Sprintf("arg%d", pos+1)
}

// checkParamNames rejects reserved and duplicated parameter names.
func checkParamNames(t reflect.Type, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "self" || name == "ctx" {
			return &SignatureError{Method: t, Reason: fmt.Sprintf("parameter name %q is reserved", name)}
		}
		if name == "" {
			return &SignatureError{Method: t, Reason: "parameter names must not be empty"}
		}
		if seen[name] {
			return &SignatureError{Method: t, Reason: fmt.Sprintf("parameter name %q repeated", name)}
		}
		seen[name] = true
	}
	return nil
}
