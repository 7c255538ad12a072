package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	HTTP struct {
		Port      int    `koanf:"port"`
		CORS      string `koanf:"cors_origin"`
		StaticDir string `koanf:"static_dir"`
	} `koanf:"http"`
	Storage struct {
		URL     string        `koanf:"url"`
		Timeout time.Duration `koanf:"connect_timeout"`
	} `koanf:"storage"`
}

var testBindings = map[string]string{
	"PORT":                  "http.port",
	"CORS_ORIGIN":           "http.cors_origin",
	"MONGO_CONNECTION_URL":  "storage.url",
	"MONGO_CONNECT_TIMEOUT": "storage.connect_timeout",
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithConfigFile("/path/to/config.yaml"),
		WithEnvFile("/path/to/.env"),
		WithEnvBindings(testBindings),
	)

	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
	if l.envFile != "/path/to/.env" || !l.envRequired {
		t.Errorf("envFile = %q (required %v), want explicit required file", l.envFile, l.envRequired)
	}
	if len(l.bindings) != len(testBindings) {
		t.Errorf("bindings = %d, want %d", len(l.bindings), len(testBindings))
	}
}

func TestLoader_LoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  port: 8080
  static_dir: "assets"
storage:
  url: "badger://memory"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if port := l.GetInt("http.port"); port != 8080 {
		t.Errorf("http.port = %d, want 8080", port)
	}
	if dir := l.GetString("http.static_dir"); dir != "assets" {
		t.Errorf("http.static_dir = %q, want %q", dir, "assets")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadEnv_BoundNamesOnly(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("MONGO_CONNECTION_URL", "mongodb://localhost:27017/game")
	t.Setenv("UNRELATED_SETTING", "ignored")

	l := NewLoader(WithEnvBindings(testBindings))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if port := l.GetInt("http.port"); port != 4000 {
		t.Errorf("http.port = %d, want 4000", port)
	}
	if url := l.GetString("storage.url"); url != "mongodb://localhost:27017/game" {
		t.Errorf("storage.url = %q", url)
	}
	for _, k := range l.Keys() {
		if k == "unrelated.setting" || k == "UNRELATED_SETTING" {
			t.Errorf("unbound variable loaded as key %q", k)
		}
	}
}

func TestLoader_LoadDotenv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envPath, []byte("CORS_ORIGIN=http://localhost:8000\nPORT=5000\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Existing environment wins over the dotenv file.
	t.Setenv("PORT", "6000")
	t.Setenv("CORS_ORIGIN", "")
	os.Unsetenv("CORS_ORIGIN")

	var cfg testConfig
	l := NewLoader(WithEnvFile(envPath), WithEnvBindings(testBindings))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.CORS != "http://localhost:8000" {
		t.Errorf("HTTP.CORS = %q, want value from dotenv", cfg.HTTP.CORS)
	}
	if cfg.HTTP.Port != 6000 {
		t.Errorf("HTTP.Port = %d, want 6000 from environment", cfg.HTTP.Port)
	}
}

func TestLoader_LoadDotenv_DefaultMissingIsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())

	l := NewLoader()
	if err := l.LoadDotenv(); err != nil {
		t.Errorf("LoadDotenv() with missing default file error = %v", err)
	}
}

func TestLoader_LoadDotenv_ExplicitMissingFails(t *testing.T) {
	l := NewLoader(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	if err := l.LoadDotenv(); err == nil {
		t.Error("LoadDotenv() should fail for an explicit missing file")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  port: 8080
storage:
  url: "mongodb://file-host:27017"
  connect_timeout: "5s"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("PORT", "9090")

	cfg := testConfig{}
	cfg.HTTP.StaticDir = "public"

	l := NewLoader(WithConfigFile(configPath), WithEnvBindings(testBindings), WithEnvFile(""))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("HTTP.Port = %d, want 9090 (env override)", cfg.HTTP.Port)
	}
	if cfg.Storage.URL != "mongodb://file-host:27017" {
		t.Errorf("Storage.URL = %q, want value from file", cfg.Storage.URL)
	}
	if cfg.Storage.Timeout != 5*time.Second {
		t.Errorf("Storage.Timeout = %v, want 5s", cfg.Storage.Timeout)
	}
	if cfg.HTTP.StaticDir != "public" {
		t.Errorf("HTTP.StaticDir = %q, default should be preserved", cfg.HTTP.StaticDir)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"http.port": 7000,
		"storage": map[string]any{
			"url": "badger://memory",
		},
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if port := l.GetInt("http.port"); port != 7000 {
		t.Errorf("http.port = %d, want 7000", port)
	}
	if url := l.GetString("storage.url"); url != "badger://memory" {
		t.Errorf("storage.url = %q, want %q", url, "badger://memory")
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := (mapProvider{}).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want ErrReadBytesNotSupported", err)
	}
}
