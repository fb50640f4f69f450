package selfdep

import (
	"reflect"
	"sync"
)

// methodInfo caches the reflection analysis of a method type so repeated
// resolves of descriptors sharing a signature skip re-deriving it.
type methodInfo struct {
	shape     CallShape
	ownerType reflect.Type

	// All parameter types, owner included, in declaration order
	params []reflect.Type
	// Indices of context.Context parameters
	ctxParams []int
	// Indices of caller-bindable parameters
	valueParams []int

	// All result types in declaration order
	results []reflect.Type
	// Index of the value result
	resultIndex int
	// Index of the trailing error result, -1 if none
	errIndex int
}

// Global method cache to avoid repeated reflection operations
var methodInfoCache sync.Map // map[reflect.Type]*methodInfo

// methodInfoOf returns cached method information, computing it if
// necessary. Analysis failures are not cached; they are cheap and the
// error is reported afresh on each resolve.
func methodInfoOf(t reflect.Type) (*methodInfo, error) {
	if cached, ok := methodInfoCache.Load(t); ok {
		return cached.(*methodInfo), nil
	}

	info, err := analyzeMethod(t)
	if err != nil {
		return nil, err
	}

	actual, _ := methodInfoCache.LoadOrStore(t, info)
	return actual.(*methodInfo), nil
}

// analyzeMethod derives the shape, parameter roles, and result arrangement
// of a method type. A method has an owner first, optionally a
// context.Context among the remaining parameters, and returns one value
// with at most one trailing error.
func analyzeMethod(t reflect.Type) (*methodInfo, error) {
	if t.NumIn() == 0 || t.In(0) == contextType {
		return nil, &NoSelfParameterError{Method: t}
	}
	if t.IsVariadic() {
		return nil, &SignatureError{Method: t, Reason: "variadic methods are not supported"}
	}

	info := &methodInfo{
		shape:       classifyShape(t),
		ownerType:   t.In(0),
		resultIndex: -1,
		errIndex:    -1,
	}

	for i := 0; i < t.NumIn(); i++ {
		info.params = append(info.params, t.In(i))
		if i == 0 {
			continue
		}
		if t.In(i) == contextType {
			info.ctxParams = append(info.ctxParams, i)
		} else {
			info.valueParams = append(info.valueParams, i)
		}
	}

	for i := 0; i < t.NumOut(); i++ {
		info.results = append(info.results, t.Out(i))
	}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
		info.resultIndex = 0
	case t.NumOut() == 2 && t.Out(0) != errorType && t.Out(1) == errorType:
		info.resultIndex = 0
		info.errIndex = 1
	default:
		return nil, &SignatureError{Method: t, Reason: "methods must return one value and at most one trailing error"}
	}

	return info, nil
}

// assignCache caches which types can fill which parameter types
type assignCache struct {
	mu    sync.RWMutex
	cache map[assignCacheKey]bool
}

type assignCacheKey struct {
	from reflect.Type
	to   reflect.Type
}

var globalAssignCache = &assignCache{
	cache: make(map[assignCacheKey]bool),
}

// canAssign checks if a value of type from can fill a parameter of type
// to, with caching. Non-interface targets require the identical type;
// interface targets accept any implementation.
func canAssign(from, to reflect.Type) bool {
	if to.Kind() != reflect.Interface {
		return from == to
	}

	key := assignCacheKey{from: from, to: to}

	// Fast path: check cache
	globalAssignCache.mu.RLock()
	if result, ok := globalAssignCache.cache[key]; ok {
		globalAssignCache.mu.RUnlock()
		return result
	}
	globalAssignCache.mu.RUnlock()

	// Slow path: compute and cache
	result := from.AssignableTo(to)

	globalAssignCache.mu.Lock()
	globalAssignCache.cache[key] = result
	globalAssignCache.mu.Unlock()

	return result
}
