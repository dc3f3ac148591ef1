package obsipc

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/creachadair/mds/mapset"
)

// A HandlerFunc implements a remotely callable function.
//
// args has already been checked against the function's signature, so
// handlers may read each argument as the kind the signature
// declares. The handler reports its outcome by adding values to
// reply, by convention starting with a [Status].
type HandlerFunc func(ctx context.Context, args []Value, reply *Reply)

// A Function is a named, remotely callable operation.
type Function struct {
	name    string
	sig     Signature
	handler HandlerFunc
}

// Name returns the function's name.
func (f *Function) Name() string { return f.name }

// Signature returns the function's parameter signature.
func (f *Function) Signature() Signature { return f.sig }

// A Collection is a namespace of related functions, usually all the
// operations on one kind of engine resource.
type Collection struct {
	name   string
	funcs  []*Function
	byName map[string]*Function
}

// NewCollection returns an empty collection.
func NewCollection(name string) *Collection {
	if name == "" {
		panic(errors.New("collection name must not be empty"))
	}
	return &Collection{
		name:   name,
		byName: map[string]*Function{},
	}
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// Register adds a function to the collection, and returns c to allow
// chaining.
//
// sig is a signature string as accepted by [ParseSignature].
//
// Register panics if name is empty or already registered, if sig is
// invalid, or if fn is nil.
func (c *Collection) Register(name string, sig string, fn HandlerFunc) *Collection {
	if name == "" {
		panic(fmt.Errorf("empty function name in collection %s", c.name))
	}
	if fn == nil {
		panic(fmt.Errorf("nil handler for %s.%s", c.name, name))
	}
	if _, ok := c.byName[name]; ok {
		panic(fmt.Errorf("duplicate function %s.%s", c.name, name))
	}
	s, err := ParseSignature(sig)
	if err != nil {
		panic(fmt.Errorf("registering %s.%s: %w", c.name, name, err))
	}
	f := &Function{name, s, fn}
	c.funcs = append(c.funcs, f)
	c.byName[name] = f
	return c
}

// Functions iterates over the collection's functions in registration
// order.
func (c *Collection) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, f := range c.funcs {
			if !yield(f) {
				return
			}
		}
	}
}

// A Registry is the immutable set of collections a [Dispatcher]
// serves.
type Registry struct {
	colls  []*Collection
	byName map[string]*Collection
}

// NewRegistry returns a registry of the given collections.
//
// The collections must not be modified after being passed to
// NewRegistry.
func NewRegistry(colls ...*Collection) (*Registry, error) {
	ret := &Registry{
		byName: make(map[string]*Collection, len(colls)),
	}
	seen := mapset.New[string]()
	for _, c := range colls {
		if seen.Has(c.name) {
			return nil, fmt.Errorf("duplicate collection %q", c.name)
		}
		seen.Add(c.name)
		ret.colls = append(ret.colls, c)
		ret.byName[c.name] = c
	}
	return ret, nil
}

// Lookup returns the function registered as collection.function.
func (r *Registry) Lookup(collection, function string) (*Function, bool) {
	c, ok := r.byName[collection]
	if !ok {
		return nil, false
	}
	f, ok := c.byName[function]
	return f, ok
}

// Collections iterates over the registered collections in
// registration order.
func (r *Registry) Collections() iter.Seq[*Collection] {
	return func(yield func(*Collection) bool) {
		for _, c := range r.colls {
			if !yield(c) {
				return
			}
		}
	}
}
