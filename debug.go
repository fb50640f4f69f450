package selfdep

import (
	"reflect"
	"runtime"
	"strings"
)

// formatFuncDebug returns a string representation of a function type as
// "(in, in) out". This is used instead of the native `%#v` formatter to
// not return the raw address of the function as that's not important for
// this and simplifies testing.
func formatFuncDebug(t reflect.Type) string {
	if t == nil {
		return "-"
	}
	if t.Kind() != reflect.Func {
		return t.String()
	}
	builder := strings.Builder{}
	builder.WriteString("(")
	for i := 0; i < t.NumIn(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(t.In(i).String())
	}
	builder.WriteString(") ")
	for i := 0; i < t.NumOut(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(t.Out(i).String())
	}
	return builder.String()
}

// funcName returns the short name of the function behind v for timing and
// diagnostics. Anonymous functions report what the runtime calls them.
func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
