// Package remote provides the authenticated execution channel to the
// deployment host. One session is opened per pipeline run and closed when
// the run ends; sessions are never shared.
package remote

import "context"

// Executor runs a shell command on the deployment host and returns its
// combined output. Implementations must respect context cancellation.
type Executor interface {
	Run(ctx context.Context, cmd string) ([]byte, error)
}
