package autostart

import (
	"bytes"
	"encoding/xml"
	"path/filepath"

	"github.com/777genius/audioswitch/internal/platform"
)

// LaunchAgentLabel identifies the per-user launchd job
const LaunchAgentLabel = "com.777genius.audioswitch"

// LaunchAgent manages ~/Library/LaunchAgents/<label>.plist
type LaunchAgent struct {
	Dir      string
	ExecPath string
}

func (l *LaunchAgent) path() string {
	return filepath.Join(l.Dir, LaunchAgentLabel+".plist")
}

// IsEnabled reports whether the plist exists
func (l *LaunchAgent) IsEnabled() (bool, error) {
	return platform.FileExists(l.path()), nil
}

// Enable writes the plist; launchd picks it up at next login
func (l *LaunchAgent) Enable() error {
	return writeFile(l.path(), l.plist())
}

// Disable removes the plist
func (l *LaunchAgent) Disable() error {
	return removeFile(l.path())
}

func (l *LaunchAgent) plist() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString(`<plist version="1.0">` + "\n<dict>\n")
	b.WriteString("\t<key>Label</key>\n\t<string>" + LaunchAgentLabel + "</string>\n")
	b.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	b.WriteString("\t\t<string>" + escapeXML(l.ExecPath) + "</string>\n")
	b.WriteString("\t\t<string>run</string>\n")
	b.WriteString("\t</array>\n")
	b.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	b.WriteString("</dict>\n</plist>\n")
	return b.Bytes()
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
