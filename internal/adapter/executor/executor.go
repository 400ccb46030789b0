package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/semmidev/vigil/internal/domain"
)

// Shell runs a command line through `sh -c` under a bounded timeout. A
// process that outlives the timeout is killed and the run reported as a
// permanent failure; the next scheduled fire is the retry.
type Shell struct {
	timeout time.Duration
}

func NewShell(timeout time.Duration) *Shell {
	return &Shell{timeout: timeout}
}

// Run executes the command to completion. A non-zero exit is reported in
// the result, not as an error; the error return covers start failures and
// timeout kills.
func (s *Shell) Run(ctx context.Context, command string) (*domain.CommandResult, error) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: timed out after %s", domain.ErrExecutionFailed, s.timeout)
	}

	result := &domain.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExecutionFailed, err)
	}

	result.ExitCode = cmd.ProcessState.ExitCode()
	return result, nil
}
