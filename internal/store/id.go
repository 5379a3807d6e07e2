package store

import "github.com/oklog/ulid/v2"

// NewID mints a sortable unique identifier for stored entities. ulid.Make
// draws from the package's locked monotonic source, so concurrent mints
// stay ordered within the process.
func NewID() string {
	return ulid.Make().String()
}
