package camera

import "testing"

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("DefaultConfig should validate, got: %v", errs)
	}
}

func TestHDConfig_Valid(t *testing.T) {
	cfg := HDConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("HDConfig should validate, got: %v", errs)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("HDConfig resolution: got %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative device", func(c *Config) { c.DeviceID = -1 }},
		{"width too small", func(c *Config) { c.Width = 100 }},
		{"height too large", func(c *Config) { c.Height = 5000 }},
		{"zero framerate", func(c *Config) { c.Framerate = 0 }},
		{"quality too high", func(c *Config) { c.Quality = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if errs := cfg.Validate(); len(errs) == 0 {
				t.Error("Expected validation error")
			}
		})
	}
}
