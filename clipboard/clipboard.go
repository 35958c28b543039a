// Package clipboard provides clipboard operations via platform-specific commands.
package clipboard

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/fwojciec/sdkdrift"
)

// ErrNoCommand is returned when no clipboard command is installed.
var ErrNoCommand = errors.New("no clipboard command found (tried pbcopy, wl-copy, xclip)")

// Ensure Command implements the Clipboard interface.
var _ sdkdrift.Clipboard = (*Command)(nil)

// candidates are tried in order by Detect.
var candidates = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
}

// Command implements Clipboard by piping content into an external command.
type Command struct {
	name string
	args []string
}

// NewCommand returns a clipboard that pipes into name with args.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: args}
}

// Detect returns a clipboard backed by the first available command.
func Detect() (*Command, error) {
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return NewCommand(c[0], c[1:]...), nil
		}
	}
	return nil, ErrNoCommand
}

// Name returns the command the clipboard writes through.
func (c *Command) Name() string {
	return c.name
}

// Copy writes content to the system clipboard.
func (c *Command) Copy(content string) error {
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(content)
	return cmd.Run()
}
