package providers

// Parser turns one vendor pricing document into a normalized record.
// Parse must be pure: the same document always yields the same record.
type Parser[R any] interface {
	// Marker is a substring a usable remote document must contain.
	Marker() string
	Parse(doc string) (R, error)
}
