package pgconv

// Helpers for shuttling optional values between domain types and nullable
// postgres columns.

// TextOrNil maps the empty string to NULL.
func TextOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the value behind p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to v; handy for literal optional arguments.
func Ptr[T any](v T) *T {
	return &v
}
