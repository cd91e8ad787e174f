package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	// Check that all fields are populated
	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	// Verify that runtime values are correct
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				// Ensure the variable is not set
				os.Unsetenv(tt.key)
				t.Cleanup(func() {
					os.Unsetenv(tt.key)
				})
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestRouteInfo(t *testing.T) {
	route := RouteInfo{
		Method: "POST",
		Path:   "/v1/formats",
		Name:   "Formats",
	}

	if route.Method != "POST" {
		t.Errorf("Expected Method=POST, got %s", route.Method)
	}
	if route.Path != "/v1/formats" {
		t.Errorf("Expected Path=/v1/formats, got %s", route.Path)
	}
	if route.Name != "Formats" {
		t.Errorf("Expected Name=Formats, got %s", route.Name)
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(http.ResponseWriter, *http.Request) {}).Methods("GET")
	router.HandleFunc("/v1/formats", func(http.ResponseWriter, *http.Request) {}).Methods("POST")
	router.HandleFunc("/v1/download", func(http.ResponseWriter, *http.Request) {}).Methods("POST")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes returned error: %v", err)
	}

	if len(routes) != 3 {
		t.Errorf("Expected 3 routes, got %d", len(routes))
	}

	found := map[string]bool{}
	for _, r := range routes {
		found[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{"GET /health", "POST /v1/formats", "POST /v1/download"} {
		if !found[want] {
			t.Errorf("Expected route %q not found in %v", want, found)
		}
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "health"},
		{"/v1/formats", "v1/formats"},
		{"/v1/download", "v1/download"},
		{"/version", "version"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := getRouteGroup(tt.path); got != tt.want {
				t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	t.Run("Creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "newdir")

		if err := ensureDirectory(dir, "scratch"); err != nil {
			t.Fatalf("ensureDirectory failed: %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory was not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("Accepts existing directory", func(t *testing.T) {
		dir := t.TempDir()

		if err := ensureDirectory(dir, "data"); err != nil {
			t.Errorf("ensureDirectory failed on existing dir: %v", err)
		}
	})

	t.Run("Rejects file path", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "afile")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := ensureDirectory(file, "data"); err == nil {
			t.Error("expected error for file path, got nil")
		}
	})
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()

	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess failed on temp dir: %v", err)
	}

	// The probe file should not be left behind
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file was left behind")
	}
}

func TestCheckToolNotFound(t *testing.T) {
	if _, err := checkTool("definitely-not-a-real-binary-name", "--version"); err == nil {
		t.Error("expected error for missing tool, got nil")
	}
}
