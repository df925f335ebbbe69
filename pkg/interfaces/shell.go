package interfaces

import (
	"context"
	"time"
)

// CommandRunner executes external programs such as pandoc.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdin string, timeout time.Duration) (string, error)
}
