package kv

const (
	// KeyPrefix namespaces every yangfinder value in shared backends.
	KeyPrefix = "yangfinder:kv:"
)

// BackendKey returns the backend key for a logical key.
func BackendKey(key string) string {
	return KeyPrefix + key
}
