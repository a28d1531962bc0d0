package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

// CommandRunner executes an external command and returns its combined output.
type CommandRunner interface {
	RunCommand(ctx context.Context, args ...string) (string, error)
}

type DefaultCommandRunner struct{}

var _ CommandRunner = &DefaultCommandRunner{}

func (d *DefaultCommandRunner) RunCommand(ctx context.Context, args ...string) (string, error) {
	utils.Log.Debug("Running command: ", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	utils.Log.Debug("Command output: ", string(out))
	return string(out), err
}

// FakeCommandRunner replays Outputs in order (the last one repeats) and records every call.
type FakeCommandRunner struct {
	Output  string
	Outputs []string
	ErrStr  string
	Calls   [][]string
}

var _ CommandRunner = &FakeCommandRunner{}

func (f *FakeCommandRunner) RunCommand(ctx context.Context, args ...string) (string, error) {
	f.Calls = append(f.Calls, args)

	out := f.Output
	if len(f.Outputs) > 0 {
		i := len(f.Calls) - 1
		if i >= len(f.Outputs) {
			i = len(f.Outputs) - 1
		}
		out = f.Outputs[i]
	}

	if f.ErrStr != "" {
		return out, errors.New(f.ErrStr)
	}
	return out, nil
}
