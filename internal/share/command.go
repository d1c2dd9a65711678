package share

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandClipboard pipes text into an external clipboard program.
type CommandClipboard struct {
	Name string
	Args []string
}

func (c CommandClipboard) Copy(ctx context.Context, text string) error {
	if c.Name == "" {
		return fmt.Errorf("clipboard command not configured")
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", c.Name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

var clipboardCommands = []CommandClipboard{
	{Name: "pbcopy"},
	{Name: "wl-copy"},
	{Name: "xclip", Args: []string{"-selection", "clipboard"}},
	{Name: "xsel", Args: []string{"--clipboard", "--input"}},
	{Name: "clip.exe"},
}

// DetectClipboard returns the first clipboard program found on PATH.
func DetectClipboard() (CommandClipboard, bool) {
	for _, c := range clipboardCommands {
		if _, err := exec.LookPath(c.Name); err == nil {
			return c, true
		}
	}
	return CommandClipboard{}, false
}

// CommandSharer hands the body to an external program on stdin, with the
// title appended as the last argument. Exit status 130 (interrupted) is
// treated as a cancelled share.
type CommandSharer struct {
	Name string
	Args []string
}

func (s CommandSharer) Share(ctx context.Context, title, body string) error {
	if s.Name == "" {
		return ErrUnsupported
	}
	if _, err := exec.LookPath(s.Name); err != nil {
		return ErrUnsupported
	}

	args := append(append([]string{}, s.Args...), title)
	cmd := exec.CommandContext(ctx, s.Name, args...)
	cmd.Stdin = strings.NewReader(body)
	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
		return ErrCancelled
	}
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return fmt.Errorf("run %s: %w", s.Name, err)
}
