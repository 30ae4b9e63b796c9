//go:build e2e && unix

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback

var binPath = "searchdeck_e2e"

// Key sequences as a terminal sends them
const (
	KeyEnter = "\r"
	KeyEsc   = "\x1b"
	KeyCtrlC = "\x03"
	KeyCtrlK = "\x0b"
	KeyCtrlU = "\x15"
	KeyUp    = "\x1b[A"
	KeyDown  = "\x1b[B"
)

// ansiRe matches the terminal control sequences bubbletea emits
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// TUITestFramework drives the searchdeck binary through a PTY
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	tty       *os.File
	cmd       *exec.Cmd
	workspace string
	config    string
	opened    string // file the fake opener appends URLs to

	// captured output, bounded
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
}

// NewTUITest creates a framework with an isolated workspace and a config pointing
// at endpoint
func NewTUITest(t *testing.T, endpoint string) *TUITestFramework {
	t.Helper()
	ws := t.TempDir()
	tf := &TUITestFramework{
		t:         t,
		buf:       make([]byte, ringSize),
		workspace: ws,
		config:    filepath.Join(ws, "config.toml"),
		opened:    filepath.Join(ws, "opened.txt"),
	}

	cfg := fmt.Sprintf(`endpoint = %q

[search]
debounce = "20ms"
timeout = "5s"

[storage]
backend = "sqlite"
path = %q

[location]
file = %q
watch = true

[log]
file = %q
level = "debug"
`, endpoint, filepath.Join(ws, "recent.db"), tf.LocationFile(), filepath.Join(ws, "searchdeck.log"))
	if err := os.WriteFile(tf.config, []byte(cfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opener := filepath.Join(ws, "opener.sh")
	script := "#!/bin/sh\necho \"$1\" >> " + tf.opened + "\n"
	if err := os.WriteFile(opener, []byte(script), 0755); err != nil {
		t.Fatalf("write opener: %v", err)
	}
	t.Cleanup(tf.Cleanup)
	return tf
}

// LocationFile returns the file holding the addressable link
func (tf *TUITestFramework) LocationFile() string {
	return filepath.Join(tf.workspace, "location")
}

// ConfigPath returns the generated config file
func (tf *TUITestFramework) ConfigPath() string {
	return tf.config
}

// Opened returns the URLs the fake opener received
func (tf *TUITestFramework) Opened() []string {
	data, err := os.ReadFile(tf.opened)
	if err != nil {
		return nil
	}
	return strings.Fields(string(data))
}

// StartApp launches searchdeck with given arguments in a PTY
func (tf *TUITestFramework) StartApp(args ...string) error {
	cmdArgs := append([]string{"--config", tf.config}, args...)
	tf.cmd = exec.Command(binPath, cmdArgs...)

	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C.UTF-8",
		"LANG=C.UTF-8",
		"HOME="+tf.workspace, // isolate $HOME
		"XDG_CONFIG_HOME="+tf.workspace,
		"SEARCHDECK_OPENER="+filepath.Join(tf.workspace, "opener.sh"),
	)

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}
	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdout = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty

	if err := pty.Setsize(ptyFile, &pty.Winsize{Rows: 40, Cols: 120}); err != nil {
		return fmt.Errorf("failed to set size: %w", err)
	}

	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}

	tf.startReader()
	return nil
}

// startReader copies PTY output into the buffer until the PTY closes
func (tf *TUITestFramework) startReader() {
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := tf.pty.Read(buf)
			if n > 0 {
				tf.mu.Lock()
				for i := 0; i < n; i++ {
					tf.buf[tf.head] = buf[i]
					tf.head = (tf.head + 1) % ringSize
					if tf.head == 0 {
						tf.full = true
					}
				}
				tf.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
}

// SendKeys writes raw key bytes to the PTY
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// Type sends text one key at a time
func (tf *TUITestFramework) Type(text string) error {
	tf.t.Helper()
	for _, r := range text {
		if err := tf.SendKeys(string(r)); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

// Search focuses the input, replaces its text with q and submits it
func (tf *TUITestFramework) Search(q string) error {
	tf.t.Helper()
	if err := tf.SendKeys("/"); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	if err := tf.SendKeys(KeyCtrlU); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	if err := tf.Type(q); err != nil {
		return err
	}
	return tf.SendKeys(KeyEnter)
}

// SeePlain fails the test unless text shows up in the plain output
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 5*time.Second)
}

// OutputContainsPlain reports whether text shows up in the plain output before timeout
func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// WaitFor polls the captured output until pred holds or timeout passes
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// WaitForExit waits for the process to exit
func (tf *TUITestFramework) WaitForExit(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- tf.cmd.Wait() }()
	select {
	case err := <-done:
		tf.cmd = nil
		return err
	case <-time.After(timeout):
		return fmt.Errorf("process did not exit within %s", timeout)
	}
}

// ClearOutput forgets everything captured so far
func (tf *TUITestFramework) ClearOutput() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.head = 0
	tf.full = false
}

// Snapshot returns everything captured so far
func (tf *TUITestFramework) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.full {
		return string(tf.buf[:tf.head])
	}
	out := make([]byte, ringSize)
	copy(out, tf.buf[tf.head:])
	copy(out[ringSize-tf.head:], tf.buf[:tf.head])
	return string(out)
}

// SnapshotPlain is Snapshot without escape sequences
func (tf *TUITestFramework) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.Snapshot(), "")
}

// DumpTailOnFail logs the last n bytes of normalized output when the test failed
func (tf *TUITestFramework) DumpTailOnFail(n int) {
	if !tf.t.Failed() {
		return
	}
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	tf.t.Logf("--- output tail ---\n%s", s)
}

// Cleanup closes the PTY and stops searchdeck if it is still running
func (tf *TUITestFramework) Cleanup() {
	tf.DumpTailOnFail(4096)
	// closing the PTY hangs up the child
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
