package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// ErrTimeout is returned when a command does not finish within its timeout.
var ErrTimeout = errors.New("shell: command timed out")

// ErrCommandFailed is returned for non-zero exit statuses.
var ErrCommandFailed = errors.New("shell: command failed")

// ErrSpawn is returned when the process could not be started.
var ErrSpawn = errors.New("shell: unable to start command")

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

var _ interfaces.CommandRunner = (*ExecRunner)(nil)

// NewExecRunner returns a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args, writes stdin to the process and returns its
// stdout. A zero timeout means no deadline beyond ctx. The process is killed
// once the timeout elapses.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, stdin string, timeout time.Duration) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...) // #nosec G204 -- binary comes from config
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSpawn, name, err)
	}

	err := cmd.Wait()
	if timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("%w: %s: timeout after %s", ErrTimeout, name, timeout)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrCommandFailed, name, msg)
	}
	return stdout.String(), nil
}
