package migration

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Tool steps, run in this order
const (
	StepDiff     = "diff"
	StepGenerate = "generate"
	StepApply    = "apply"
)

// Tools holds the command lines of the three external tool steps. The token
// {name} is replaced with the migration name.
type Tools struct {
	Diff     string
	Generate string
	Apply    string
}

type step struct {
	name string
	args []string
}

func (t Tools) steps(migrationName string) ([]step, error) {
	var steps []step
	for _, s := range []struct{ name, cmd string }{
		{StepDiff, t.Diff},
		{StepGenerate, t.Generate},
		{StepApply, t.Apply},
	} {
		args := strings.Fields(strings.ReplaceAll(s.cmd, "{name}", migrationName))
		if len(args) == 0 {
			return nil, fmt.Errorf("no command configured for step %s", s.name)
		}
		steps = append(steps, step{name: s.name, args: args})
	}
	return steps, nil
}

// Runner executes one external tool invocation and returns its combined output
type Runner interface {
	Run(ctx context.Context, args []string) ([]byte, error)
}

// ExecRunner runs tool steps as child processes in Dir
type ExecRunner struct {
	Dir string
}

// Run starts the process and waits for it. A non-zero exit is an error. The
// process is killed when ctx is done.
func (r ExecRunner) Run(ctx context.Context, args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = 5 * time.Second
	return cmd.CombinedOutput()
}
