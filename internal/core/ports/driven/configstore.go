package driven

// ConfigStore reads and writes persisted application settings.
// Implementations own the storage format and the type coercion rules.
type ConfigStore interface {
	// Get returns the raw value for a key and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns a string value, or "" when the key is missing
	// or holds a different type.
	GetString(key string) string

	// GetInt returns an integer value, or 0 when the key is missing or
	// holds a different type.
	GetInt(key string) int

	// GetBool returns a boolean value, or false when the key is missing
	// or holds a different type.
	GetBool(key string) bool

	// Set stores a value under a key and persists it immediately.
	Set(key string, value any) error

	// Save writes the current configuration out.
	Save() error

	// Load re-reads the configuration from storage.
	Load() error

	// Path reports where the configuration lives, for display to users.
	Path() string
}
