package autostart

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	m := &XDG{Dir: dir, ExecPath: "/usr/local/bin/audioswitch"}

	enabled, err := m.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, m.Enable())
	enabled, err = m.IsEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	data, err := os.ReadFile(filepath.Join(dir, "audioswitch.desktop"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[Desktop Entry]\n"))
	assert.Contains(t, string(data), "Exec=/usr/local/bin/audioswitch run\n")
	assert.Contains(t, string(data), "Name=AudioSwitch\n")

	require.NoError(t, m.Disable())
	enabled, err = m.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, m.Disable(), "disabling twice is fine")
}

func TestXDGQuotesPathWithSpaces(t *testing.T) {
	m := &XDG{Dir: t.TempDir(), ExecPath: "/opt/Audio Switch/audioswitch"}
	assert.Contains(t, m.desktopEntry(), `Exec="/opt/Audio Switch/audioswitch" run`)
}

func TestLaunchAgentLifecycle(t *testing.T) {
	dir := t.TempDir()
	m := &LaunchAgent{Dir: dir, ExecPath: "/Applications/A&B/audioswitch"}

	require.NoError(t, m.Enable())
	enabled, err := m.IsEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	data, err := os.ReadFile(filepath.Join(dir, LaunchAgentLabel+".plist"))
	require.NoError(t, err)
	plist := string(data)
	assert.Contains(t, plist, "<string>"+LaunchAgentLabel+"</string>")
	assert.Contains(t, plist, "<string>/Applications/A&amp;B/audioswitch</string>")
	assert.Contains(t, plist, "<key>RunAtLoad</key>")

	require.NoError(t, m.Disable())
	enabled, err = m.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "/bin/audioswitch run", commandLine("/bin/audioswitch"))
	assert.Equal(t, `"C:\Program Files\AudioSwitch\audioswitch.exe" run`, commandLine(`C:\Program Files\AudioSwitch\audioswitch.exe`))
}

func TestNewForPlatform(t *testing.T) {
	m, err := New("/usr/bin/audioswitch")
	switch runtime.GOOS {
	case "linux":
		require.NoError(t, err)
		assert.IsType(t, &XDG{}, m)
	case "darwin":
		require.NoError(t, err)
		assert.IsType(t, &LaunchAgent{}, m)
	case "windows":
		require.NoError(t, err)
		assert.NotNil(t, m)
	default:
		assert.ErrorIs(t, err, ErrUnsupported)
	}
}
