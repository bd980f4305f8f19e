package webshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapstitch.yaml")
	content := `
browser:
  remote: ws://127.0.0.1:9222
  recycle_interval: 2h
capture:
  overlap_height: 100
  settle_delay: 250ms
history_db: /tmp/history.db
output_dir: /tmp/shots
listen: :9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.Remote != "ws://127.0.0.1:9222" {
		t.Errorf("remote = %q", cfg.Browser.Remote)
	}
	if cfg.Browser.RecycleInterval != 2*time.Hour {
		t.Errorf("recycle_interval = %v", cfg.Browser.RecycleInterval)
	}
	if cfg.Capture.OverlapHeight != 100 {
		t.Errorf("overlap_height = %d", cfg.Capture.OverlapHeight)
	}
	if cfg.Capture.SettleDelay != 250*time.Millisecond {
		t.Errorf("settle_delay = %v", cfg.Capture.SettleDelay)
	}
	if cfg.HistoryDB != "/tmp/history.db" {
		t.Errorf("history_db = %q", cfg.HistoryDB)
	}
	if cfg.OutputDir != "/tmp/shots" {
		t.Errorf("output_dir = %q", cfg.OutputDir)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
}

func TestLoadConfigFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapstitch.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.RecycleInterval != 4*time.Hour {
		t.Errorf("recycle_interval default = %v, want 4h", cfg.Browser.RecycleInterval)
	}
	if cfg.OutputDir != "captures" {
		t.Errorf("output_dir default = %q, want captures", cfg.OutputDir)
	}
	if cfg.Listen != ":8086" {
		t.Errorf("listen default = %q, want :8086", cfg.Listen)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("browser: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"https", Request{URL: "https://example.com/page"}, false},
		{"http", Request{URL: "http://example.com"}, false},
		{"with format", Request{URL: "https://example.com", Format: "pdf"}, false},
		{"mixed-case format", Request{URL: "https://example.com", Format: "PNG"}, false},
		{"empty url", Request{}, true},
		{"relative url", Request{URL: "/just/a/path"}, true},
		{"file scheme", Request{URL: "file:///etc/passwd"}, true},
		{"javascript scheme", Request{URL: "javascript:alert(1)"}, true},
		{"missing host", Request{URL: "https://"}, true},
		{"bad format", Request{URL: "https://example.com", Format: "gif"}, true},
	}
	for _, tt := range tests {
		_, err := validate(tt.req)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
