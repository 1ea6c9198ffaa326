package driven

// ConfigStore provides access to application configuration.
// Keys use dot notation ("llm.provider") regardless of how the
// backing format nests them.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't numeric.
	GetInt(key string) int

	// GetFloat retrieves a floating point configuration value.
	// Integers are widened. Returns 0 if key doesn't exist or isn't numeric.
	GetFloat(key string) float64

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
