package utils

func Ptr[T any](v T) *T {
	return &v
}

// OptionalID maps an unset id (zero or negative) to nil so it is left out of
// request bodies.
func OptionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
