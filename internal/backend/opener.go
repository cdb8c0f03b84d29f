package backend

import (
	"os/exec"
	"runtime"
)

// ExecOpener opens URLs with the platform browser command. Command may be
// overridden from config; empty picks the platform default.
type ExecOpener struct {
	Command string
}

func (o ExecOpener) Open(url string) error {
	cmd := o.Command
	if cmd == "" {
		switch runtime.GOOS {
		case "darwin":
			cmd = "open"
		case "windows":
			cmd = "rundll32"
		default:
			cmd = "xdg-open"
		}
	}
	args := []string{url}
	if cmd == "rundll32" {
		args = []string{"url.dll,FileProtocolHandler", url}
	}
	// Start, not Run: the browser process outlives the launch.
	return exec.Command(cmd, args...).Start()
}
