package ports

// ContentFilter cheaply rejects files that cannot hold anything a full
// parse would find.
type ContentFilter interface {
	// Relevant reports whether content may contain a match.
	Relevant(content []byte) bool
}
