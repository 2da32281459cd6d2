// Package clipboard copies text to the system clipboard from a terminal app.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard copies text.
type Clipboard interface {
	Copy(text string) error
}

// System writes an OSC 52 escape sequence, which works over SSH and inside
// tmux on terminals that honour it, and also pipes the text to the platform
// clipboard tool when one is installed.
type System struct {
	// Out receives the escape sequence; defaults to stderr so it does not
	// interleave with the UI renderer on stdout.
	Out io.Writer

	goos     string
	getenv   func(string) string
	lookPath func(string) (string, error)
	run      func(cmd *exec.Cmd) error
}

// NewSystem returns the clipboard for the current platform.
func NewSystem() *System {
	return &System{
		Out:      os.Stderr,
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		run:      func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

// ForceOSC52Env set to 1 marks the terminal as honouring OSC 52.
const ForceOSC52Env = "TRIAGE_OSC52"

var (
	osc52Programs = []string{"iTerm.app", "WezTerm", "ghostty", "kitty", "Alacritty"}
	osc52Terms    = []string{"xterm-kitty", "alacritty", "foot", "wezterm", "xterm-ghostty", "contour"}
)

// Copy succeeds if the native tool worked, or if the escape sequence was
// written to a terminal known to honour it. A successful write alone does
// not mean the terminal kept the text.
func (s *System) Copy(text string) error {
	oscErr := s.writeOSC52(text)
	nativeErr := s.copyNative(text)
	if nativeErr == nil {
		return nil
	}
	if oscErr == nil {
		if s.supportsOSC52() {
			return nil
		}
		oscErr = errors.New("terminal OSC 52 support unknown")
	}
	return errors.Join(nativeErr, oscErr)
}

func (s *System) supportsOSC52() bool {
	if s.getenv(ForceOSC52Env) == "1" {
		return true
	}
	if s.getenv("LC_TERMINAL") == "iTerm2" {
		return true
	}
	program := s.getenv("TERM_PROGRAM")
	for _, p := range osc52Programs {
		if strings.EqualFold(program, p) {
			return true
		}
	}
	term := s.getenv("TERM")
	for _, t := range osc52Terms {
		if strings.HasPrefix(term, t) {
			return true
		}
	}
	return false
}

func (s *System) writeOSC52(text string) error {
	if s.Out == nil {
		return errors.New("no terminal output for OSC 52")
	}
	seq := osc52.New(text)
	if s.getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if strings.HasPrefix(s.getenv("TERM"), "screen") {
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(s.Out)
	return err
}

func (s *System) copyNative(text string) error {
	cmd, err := s.command()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	if err := s.run(cmd); err != nil {
		return fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return nil
}

func (s *System) command() (*exec.Cmd, error) {
	switch s.goos {
	case "darwin":
		return exec.Command("pbcopy"), nil
	case "windows":
		return exec.Command("clip"), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if _, err := s.lookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := s.lookPath("xsel"); err == nil {
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
		if _, err := s.lookPath("wl-copy"); err == nil {
			return exec.Command("wl-copy"), nil
		}
		return nil, errors.New("no clipboard utility found (xclip, xsel or wl-copy)")
	default:
		return nil, fmt.Errorf("clipboard not supported on platform: %s", s.goos)
	}
}
