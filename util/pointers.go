package util

// Ptr returns a pointer to the given value. Optional config switches use it
// to tell "unset" from false.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by p, or def if p is nil.
func Deref[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}
