package models

// Cloner deep-copies the persisted members of src onto dst. Both arguments
// point at an instance of the same concrete entity type. Cloners are
// registered per table at schema time; src/clone provides a default
// implementation for tables that do not register one of their own.
type Cloner interface {
	Clone(dst, src any)
}

// ClonerFunc adapts a plain function to a Cloner.
type ClonerFunc func(dst, src any)

// Clone implements Cloner.
func (f ClonerFunc) Clone(dst, src any) { f(dst, src) }
