package vigil

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative camera", func(c *Config) { c.CameraID = -1 }, true},
		{"empty log dir", func(c *Config) { c.LogDir = "" }, true},
		{"empty model dir", func(c *Config) { c.ModelDir = "" }, true},
		{"disabled status is fine", func(c *Config) { c.StatusPort = "" }, false},
		{"disabled history is fine", func(c *Config) { c.HistoryPath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigLoadEnv(t *testing.T) {
	t.Setenv("VIGIL_CAMERA", "2")
	t.Setenv("VIGIL_LOG_DIR", "/tmp/vigil-test-logs")
	t.Setenv("VIGIL_STATUS_PORT", "9999")
	t.Setenv("VIGIL_MODEL_DIR", "/opt/models")

	cfg := DefaultConfig()
	cfg.LoadEnvConfig()

	if cfg.CameraID != 2 {
		t.Errorf("CameraID: got %d, want 2", cfg.CameraID)
	}
	if cfg.LogDir != "/tmp/vigil-test-logs" {
		t.Errorf("LogDir: got %q", cfg.LogDir)
	}
	if cfg.StatusPort != "9999" {
		t.Errorf("StatusPort: got %q", cfg.StatusPort)
	}
	if cfg.ModelDir != "/opt/models" {
		t.Errorf("ModelDir: got %q", cfg.ModelDir)
	}
}

func TestCameraConfigMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CameraID = 1

	cam := cfg.cameraConfig()
	if cam.DeviceID != 1 {
		t.Errorf("DeviceID: got %d, want 1", cam.DeviceID)
	}
	if cam.Width != 640 {
		t.Errorf("Width: got %d, want 640", cam.Width)
	}

	cfg.HD = true
	if hd := cfg.cameraConfig(); hd.Width != 1280 {
		t.Errorf("HD width: got %d, want 1280", hd.Width)
	}
}
