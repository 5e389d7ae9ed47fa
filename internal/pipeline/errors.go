package pipeline

import "fmt"

// Stage names, in execution order. Every fatal error short-circuits all
// later stages; only the prune stage is allowed to fail without aborting.
const (
	StageBuild      = "build"
	StagePush       = "push"
	StageConnect    = "connect"
	StageRewriteEnv = "rewrite-env"
	StageResolve    = "resolve-stack"
	StagePull       = "pull"
	StageUp         = "up"
	StagePrune      = "prune"
)

// StageError wraps a failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
