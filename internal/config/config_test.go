package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symvis/internal/visibility"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("mylib")

	assert.Equal(t, "mylib", cfg.Name)
	assert.Equal(t, "MYLIB", cfg.Prefix())
	assert.Equal(t, filepath.Join("include", "mylib", "export.h"), cfg.Header.Output)
	assert.Equal(t, "shared", cfg.Facts.BuildMode)
	assert.Equal(t, "building", cfg.Facts.Role)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SYMVIS_PLATFORM", "")
	t.Setenv("SYMVIS_BUILD_MODE", "")
	t.Setenv("SYMVIS_ROLE", "")
	t.Setenv("SYMVIS_NO_EXPORT", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".symvis", "config.yaml")

	cfg := DefaultConfig("tensor-rt")
	cfg.Facts.Platform = "windows"
	cfg.Facts.SuppressExport = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tensor-rt", loaded.Name)
	assert.Equal(t, "TENSOR_RT", loaded.Prefix())
	assert.Equal(t, "windows", loaded.Facts.Platform)
	assert.True(t, loaded.Facts.SuppressExport)
}

func TestConfig_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, DefaultConfig("mylib").Save(path))

	t.Setenv("SYMVIS_PLATFORM", "posix-plain")
	t.Setenv("SYMVIS_BUILD_MODE", "static")
	t.Setenv("SYMVIS_ROLE", "consuming")
	t.Setenv("SYMVIS_NO_EXPORT", "true")

	loaded, err := Load(path)
	require.NoError(t, err)

	facts, err := loaded.VisibilityFacts()
	require.NoError(t, err)
	assert.Equal(t, visibility.PlatformPOSIXPlain, facts.Platform)
	assert.Equal(t, visibility.BuildStatic, facts.BuildMode)
	assert.Equal(t, visibility.RoleConsumingLibrary, facts.Role)
	assert.True(t, facts.SuppressExport)
}

func TestConfig_ValidateRejectsBadFacts(t *testing.T) {
	cfg := DefaultConfig("mylib")
	cfg.Facts.Platform = "beos"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig("mylib")
	cfg.Facts.Role = "observer"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig("mylib")
	cfg.MacroPrefix = "bad prefix"
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateRequiresName(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, (&Config{Name: "x"}).Save(path))

	// Corrupt it.
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSanitizePrefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"mylib", "MYLIB"},
		{"my-lib", "MY_LIB"},
		{"tensor.rt", "TENSOR_RT"},
		{"3dlib", "_3DLIB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizePrefix(tt.in), "sanitizePrefix(%q)", tt.in)
	}
}
