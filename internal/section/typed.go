// Typed accessors over the store's dynamic map. Go methods cannot be
// generic, so these live as package-level functions taking the store.
package section

// Get returns the value stored under id coerced to T, or def when the id
// is absent. A missing key is not an error; a stored value that cannot
// represent T is.
func Get[T any](s *Store, id string, def T) (T, error) {
	v, ok, err := s.Raw(id)
	if err != nil || !ok {
		return def, err
	}
	return Coerce[T](v)
}

// TryGet returns the value stored under id coerced to T together with an
// explicit found flag.
func TryGet[T any](s *Store, id string) (T, bool, error) {
	var zero T
	v, ok, err := s.Raw(id)
	if err != nil || !ok {
		return zero, false, err
	}
	cv, err := Coerce[T](v)
	if err != nil {
		return zero, false, err
	}
	return cv, true, nil
}

// Set stores value under id with write-through persistence and returns the
// value for call chaining.
func Set[T any](s *Store, id string, value T) (T, error) {
	return value, s.SetValue(id, value)
}
