package util

import "github.com/oklog/ulid/v2"

// NewULID returns a new lexically sortable id. ulid.Make draws from a
// process-wide monotonic entropy source and is safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}

// IsULID reports whether s parses as a ULID.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
