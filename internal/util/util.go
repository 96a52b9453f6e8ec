package util

func PtrTo[T any](value T) *T {
	return &value
}

// Require returns value if err is nil and panics otherwise.
// It is intended for program initialization and tooling, not for request handling.
func Require[T any](value T, err error) T {
	Must(err)
	return value
}

func Must(err error) {
	if err != nil {
		panic(err)
	}
}
