package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSystem(goos string, env map[string]string, tools ...string) (*System, *bytes.Buffer, *[]string) {
	var out bytes.Buffer
	var ran []string
	s := &System{
		Out:    &out,
		goos:   goos,
		getenv: func(k string) string { return env[k] },
		lookPath: func(name string) (string, error) {
			for _, t := range tools {
				if t == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", exec.ErrNotFound
		},
		run: func(cmd *exec.Cmd) error {
			data, _ := io.ReadAll(cmd.Stdin)
			ran = append(ran, strings.Join(cmd.Args, " ")+"="+string(data))
			return nil
		},
	}
	return s, &out, &ran
}

func TestCopyWritesOSC52AndNative(t *testing.T) {
	s, out, ran := testSystem("linux", nil, "xsel")

	require.NoError(t, s.Copy("hello"))
	assert.Contains(t, out.String(), base64.StdEncoding.EncodeToString([]byte("hello")))
	assert.Equal(t, []string{"xsel --clipboard --input=hello"}, *ran)
}

func TestCopyPrefersXclip(t *testing.T) {
	s, _, ran := testSystem("linux", nil, "xclip", "xsel")
	require.NoError(t, s.Copy("x"))
	assert.Equal(t, []string{"xclip -selection clipboard=x"}, *ran)
}

func TestCopyDarwin(t *testing.T) {
	s, _, ran := testSystem("darwin", nil)
	require.NoError(t, s.Copy("mac"))
	assert.Equal(t, []string{"pbcopy=mac"}, *ran)
}

func TestCopyTmuxWrapsSequence(t *testing.T) {
	s, out, _ := testSystem("linux", map[string]string{"TMUX": "/tmp/tmux", "TERM_PROGRAM": "WezTerm"})
	require.NoError(t, s.Copy("t"))
	assert.True(t, strings.HasPrefix(out.String(), "\x1bPtmux;"))
}

func TestCopyOSC52OnlyOnKnownTerminal(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"kitty term", map[string]string{"TERM": "xterm-kitty"}},
		{"iterm program", map[string]string{"TERM_PROGRAM": "iTerm.app"}},
		{"iterm over ssh", map[string]string{"LC_TERMINAL": "iTerm2", "TERM": "xterm-256color"}},
		{"forced", map[string]string{ForceOSC52Env: "1", "TERM": "xterm-256color"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out, ran := testSystem("linux", tt.env)
			require.NoError(t, s.Copy("remote"))
			assert.NotEmpty(t, out.String())
			assert.Empty(t, *ran)
		})
	}
}

func TestCopyUnconfirmedOSC52IsAnError(t *testing.T) {
	s, out, _ := testSystem("linux", map[string]string{"TERM": "xterm-256color"})

	err := s.Copy("remote")
	require.Error(t, err)
	assert.ErrorContains(t, err, "no clipboard utility found")
	assert.ErrorContains(t, err, "OSC 52 support unknown")
	assert.NotEmpty(t, out.String())
}

func TestCopyFailsWhenNothingWorks(t *testing.T) {
	s, _, _ := testSystem("plan9", nil)
	s.Out = nil
	assert.Error(t, s.Copy("x"))

	s, _, _ = testSystem("darwin", nil)
	s.Out = nil
	s.run = func(*exec.Cmd) error { return errors.New("boom") }
	assert.ErrorContains(t, s.Copy("x"), "boom")
}
