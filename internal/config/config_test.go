package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultScheme, cfg.Scheme)
	assert.Equal(t, 33*time.Millisecond, cfg.CursorThrottle.Duration)
	assert.Equal(t, DefaultAutosave, cfg.Autosave.Duration)
	assert.NotEmpty(t, cfg.Database)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
name = "Ada"
port = 9000
autosave = "0s"
cursor_throttle = "50ms"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.Zero(t, cfg.Autosave.Duration)
	assert.Equal(t, 50*time.Millisecond, cfg.CursorThrottle.Duration)
	assert.Equal(t, DefaultScheme, cfg.Scheme)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.toml":  `colour = "red"`,
		"syntax.toml":   `port = `,
		"port.toml":     `port = 70000`,
		"throttle.toml": `cursor_throttle = "1ms"`,
		"duration.toml": `autosave = "soon"`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cfg.toml")
	want := Default()
	want.Name = "Bo"
	want.Color = "#EF4444"
	require.NoError(t, Write(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPathHonoursEnv(t *testing.T) {
	t.Setenv("CANVASBOARD_CONFIG", "/tmp/x.toml")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.toml", p)
}
