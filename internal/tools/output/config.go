package output

// Default limits for output processing.
// These are tuned for typical LLM context windows.
const (
	// DefaultMaxItems is the default maximum number of matches returned per query.
	DefaultMaxItems = 100

	// AbsoluteMaxItems is the absolute maximum items that can be requested.
	// Requests above it are capped.
	AbsoluteMaxItems = 1000

	// DefaultMaxResponseBytes is the default hard limit on response size (512KB).
	DefaultMaxResponseBytes = 512 * 1024

	// AbsoluteMaxResponseBytes is the absolute maximum response size (2MB).
	AbsoluteMaxResponseBytes = 2 * 1024 * 1024

	// DefaultMaxCellWidth bounds table cells, in terminal columns.
	DefaultMaxCellWidth = 60
)

// Config holds configuration for output processing.
type Config struct {
	// MaxItems limits the number of matches returned per query.
	// Default: 100, Absolute max: 1000
	MaxItems int `json:"maxItems" yaml:"maxItems"`

	// MaxResponseBytes is a hard limit on rendered response size in bytes.
	// Default: 512KB, Absolute max: 2MB
	MaxResponseBytes int `json:"maxResponseBytes" yaml:"maxResponseBytes"`

	// MaxCellWidth truncates wide table cells. Default: 60
	MaxCellWidth int `json:"maxCellWidth" yaml:"maxCellWidth"`

	// MaskSecrets replaces values under sensitive keys with "***REDACTED***".
	// Default: true
	MaskSecrets bool `json:"maskSecrets" yaml:"maskSecrets"`

	// SensitiveKeys lists key substrings treated as sensitive when masking.
	SensitiveKeys []string `json:"sensitiveKeys,omitempty" yaml:"sensitiveKeys,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxItems:         DefaultMaxItems,
		MaxResponseBytes: DefaultMaxResponseBytes,
		MaxCellWidth:     DefaultMaxCellWidth,
		MaskSecrets:      true,
		SensitiveKeys:    DefaultSensitiveKeys(),
	}
}

// Validate validates the configuration and applies absolute limits.
// It returns a validated copy with any out-of-range values capped.
func (c *Config) Validate() *Config {
	validated := *c

	if validated.MaxItems <= 0 {
		validated.MaxItems = DefaultMaxItems
	}
	if validated.MaxResponseBytes <= 0 {
		validated.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if validated.MaxCellWidth <= 0 {
		validated.MaxCellWidth = DefaultMaxCellWidth
	}

	if validated.MaxItems > AbsoluteMaxItems {
		validated.MaxItems = AbsoluteMaxItems
	}
	if validated.MaxResponseBytes > AbsoluteMaxResponseBytes {
		validated.MaxResponseBytes = AbsoluteMaxResponseBytes
	}

	if validated.MaskSecrets && len(validated.SensitiveKeys) == 0 {
		validated.SensitiveKeys = DefaultSensitiveKeys()
	}

	return &validated
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.SensitiveKeys != nil {
		clone.SensitiveKeys = make([]string, len(c.SensitiveKeys))
		copy(clone.SensitiveKeys, c.SensitiveKeys)
	}
	return &clone
}

// TruncationWarning contains information about response truncation.
type TruncationWarning struct {
	// Shown is the number of items returned
	Shown int `json:"shown"`

	// Total is the total number of items before truncation
	Total int `json:"total"`

	// Message is a human-readable warning message
	Message string `json:"message"`
}
