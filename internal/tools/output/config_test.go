package output

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.MaxItems != DefaultMaxItems {
		t.Errorf("MaxItems = %d, want %d", cfg.MaxItems, DefaultMaxItems)
	}
	if cfg.MaxResponseBytes != DefaultMaxResponseBytes {
		t.Errorf("MaxResponseBytes = %d, want %d", cfg.MaxResponseBytes, DefaultMaxResponseBytes)
	}
	if cfg.MaxCellWidth != DefaultMaxCellWidth {
		t.Errorf("MaxCellWidth = %d, want %d", cfg.MaxCellWidth, DefaultMaxCellWidth)
	}
	if !cfg.MaskSecrets {
		t.Error("MaskSecrets should be true by default")
	}
	if len(cfg.SensitiveKeys) == 0 {
		t.Error("SensitiveKeys should have default values")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantMax   int
		wantBytes int
	}{
		{
			name:      "zero values use defaults",
			config:    &Config{},
			wantMax:   DefaultMaxItems,
			wantBytes: DefaultMaxResponseBytes,
		},
		{
			name:      "values under max are preserved",
			config:    &Config{MaxItems: 50, MaxResponseBytes: 1024},
			wantMax:   50,
			wantBytes: 1024,
		},
		{
			name:      "values over absolute max are capped",
			config:    &Config{MaxItems: 2000, MaxResponseBytes: 10 * 1024 * 1024},
			wantMax:   AbsoluteMaxItems,
			wantBytes: AbsoluteMaxResponseBytes,
		},
		{
			name:      "negative values use defaults",
			config:    &Config{MaxItems: -1, MaxResponseBytes: -1},
			wantMax:   DefaultMaxItems,
			wantBytes: DefaultMaxResponseBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated := tt.config.Validate()

			if validated.MaxItems != tt.wantMax {
				t.Errorf("MaxItems = %d, want %d", validated.MaxItems, tt.wantMax)
			}
			if validated.MaxResponseBytes != tt.wantBytes {
				t.Errorf("MaxResponseBytes = %d, want %d", validated.MaxResponseBytes, tt.wantBytes)
			}
		})
	}
}

func TestConfigValidate_SensitiveKeysDefaults(t *testing.T) {
	cfg := &Config{MaskSecrets: true}

	validated := cfg.Validate()

	if len(validated.SensitiveKeys) == 0 {
		t.Error("SensitiveKeys should get defaults when masking is enabled")
	}
	if cfg.SensitiveKeys != nil {
		t.Error("Validate must not modify the receiver")
	}
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.SensitiveKeys[0] = "changed"
	clone.MaxItems = 1

	if original.SensitiveKeys[0] == "changed" {
		t.Error("Clone shares SensitiveKeys with the original")
	}
	if original.MaxItems == 1 {
		t.Error("Clone shares MaxItems with the original")
	}

	var nilConfig *Config
	if nilConfig.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
