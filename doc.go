// Package selfdep exposes instance methods as cached, injectable callables.
// A method is an ordinary function whose first parameter is the owning
// instance; declaring it with SelfDependent produces a Descriptor that
// resolves a per-owner wrapper on demand, caches it by object identity, and
// describes its parameters with queryable metadata so that a surrounding
// injection framework can supply "self" from a factory, or from the owner
// type itself, instead of requiring a live instance at declaration time.
//
// The Descriptor object has comprehensive documentation about how it works.
//
// There are also helper global functions that make using this more concise.
package selfdep
