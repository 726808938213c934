package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSDetectionMatchesRuntime(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "windows", IsWindows())
	assert.Equal(t, runtime.GOOS == "darwin", IsMacOS())
	assert.Equal(t, runtime.GOOS == "linux", IsLinux())
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	assert.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
	assert.False(t, FileExists(""))
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("AUDIOSWITCH_TEST_DIR", "/opt/sounds")

	assert.Equal(t, "/opt/sounds/chime.wav", ExpandEnv("${AUDIOSWITCH_TEST_DIR}/chime.wav"))
	assert.Equal(t, "${AUDIOSWITCH_UNSET_VAR}/x", ExpandEnv("${AUDIOSWITCH_UNSET_VAR}/x"))
	assert.Equal(t, "", ExpandEnv(""))

	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, "sounds"), ExpandEnv("~/sounds"))
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUDIOSWITCH_HOME", dir)

	assert.Equal(t, dir, ConfigDir())
	assert.Equal(t, dir, DataDir())
}
