package pointer

// Of returns a pointer to a copy of value.
func Of[T any](value T) *T {
	return &value
}

// IfValid returns a pointer to value when valid, otherwise nil.
func IfValid[T any](valid bool, value T) *T {
	if valid {
		return &value
	}
	return nil
}

// OrDefault returns value, or a pointer to defaultValue when value is nil.
func OrDefault[T any](value *T, defaultValue T) *T {
	if value != nil {
		return value
	}
	return &defaultValue
}

// Copy returns a pointer to a copy of the value pointed to, or nil.
func Copy[T any](value *T) *T {
	if value == nil {
		return nil
	}

	cloned := *value
	return &cloned
}

func String(value string) *string {
	return Of(value)
}

func Uint64(value uint64) *uint64 {
	return Of(value)
}
