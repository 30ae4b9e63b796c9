package ui

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
)

// Opener hands a result URL to something outside the TUI
type Opener interface {
	Open(rawURL string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(rawURL string) error

func (f OpenerFunc) Open(rawURL string) error { return f(rawURL) }

// SystemOpener opens URLs with the platform's default handler
type SystemOpener struct{}

// NewSystemOpener creates an opener for the current platform
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{}
}

// Command returns the program and arguments used to open rawURL. The
// SEARCHDECK_OPENER environment variable overrides the platform default.
func (o *SystemOpener) Command(rawURL string) (string, []string) {
	if bin := os.Getenv("SEARCHDECK_OPENER"); bin != "" {
		return bin, []string{rawURL}
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

// IsAvailable checks if the opener binary can be found
func (o *SystemOpener) IsAvailable() bool {
	bin, _ := o.Command("")
	if _, err := exec.LookPath(bin); err == nil {
		return true
	}
	// An override may be an absolute path that is not in PATH
	_, err := os.Stat(bin)
	return err == nil
}

// Open starts the opener without waiting for the browser to exit
func (o *SystemOpener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}

	bin, args := o.Command(rawURL)
	cmd := exec.Command(bin, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", bin, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
