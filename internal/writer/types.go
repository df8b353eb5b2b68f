// internal/writer/types.go
package writer

// Formatter renders a value for display. Display only: stored precision is untouched.
type Formatter func(v any) string

// Item is one named entry of the published service.
type Item struct {
	Path      string
	Initial   any // nil publishes as "invalid"
	Format    Formatter
	Writeable bool
}

// Change is one value delivery.
type Change struct {
	Path  string
	Value any
}

// ChangeFunc is called when a consumer writes a writeable item.
// Returning false rejects the write.
type ChangeFunc func(path string, value any) bool

// Sink is a published key/value service.
// Register is called exactly once, before any Set.
type Sink interface {
	Register(items []Item, onChange ChangeFunc) error
	Set(path string, value any) error
	Close() error
}
