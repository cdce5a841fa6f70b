package badger

// Key prefixes for different data types
const (
	messageDocPrefix = "msgdoc:"
)

// makeMessageDocKey generates a key for a message document by ID.
func makeMessageDocKey(id string) []byte {
	return []byte(messageDocPrefix + id)
}
