// Package pipeline drives one release from a freshly built image to the
// stack running on the deployment host: build, publish, then an ordered
// list of typed remote operations over a single authenticated session.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/docker/docker/api/types/registry"
	"github.com/google/uuid"

	"github.com/Seob0707/CD2-BE/internal/compose"
	"github.com/Seob0707/CD2-BE/internal/config"
	"github.com/Seob0707/CD2-BE/internal/docker"
	"github.com/Seob0707/CD2-BE/internal/envfile"
	"github.com/Seob0707/CD2-BE/internal/remote"
)

// ImageStore abstracts the local image engine operations the pipeline needs.
type ImageStore interface {
	BuildImage(ctx context.Context, dir, tag string, buildArgs map[string]*string, onOutput docker.OutputCallback) error
	PushImage(ctx context.Context, tag string, auth registry.AuthConfig, onOutput docker.OutputCallback) error
}

// RemoteSession is an executor whose lifetime the pipeline owns.
type RemoteSession interface {
	remote.Executor
	Close() error
}

// Dialer opens the authenticated channel to the deployment host.
type Dialer func(cfg config.RemoteConfig) (RemoteSession, error)

// Pipeline coordinates a strictly sequential release run. Each stage blocks
// until the previous one succeeded; the run as a whole either completes or
// aborts with the failing stage's error.
type Pipeline struct {
	images ImageStore
	dial   Dialer
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// New creates a release pipeline. All credentials live in cfg; nothing here
// reads ambient secret state.
func New(images ImageStore, dial Dialer, cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{images: images, dial: dial, cfg: cfg, logger: logger}
}

// Run executes one release for the given commit identifier.
func (p *Pipeline) Run(ctx context.Context, commit string) error {
	log := p.logger.With("run_id", uuid.NewString(), "commit", commit)

	rel, err := NewRelease(p.cfg.Namespace, p.cfg.Service, commit, p.cfg.BuildContextDir)
	if err != nil {
		return &StageError{Stage: StageBuild, Err: err}
	}
	log.Info("release created", "tag", rel.Tag)

	if err := p.build(ctx, rel, log); err != nil {
		return &StageError{Stage: StageBuild, Err: err}
	}
	log.Info("image built", "tag", rel.Tag)

	if err := p.push(ctx, rel, log); err != nil {
		return &StageError{Stage: StagePush, Err: err}
	}
	log.Info("image pushed", "tag", rel.Tag)

	// No remote mutation may happen unless the channel is up and the host
	// identity verified.
	session, err := p.dial(p.cfg.Remote)
	if err != nil {
		return &StageError{Stage: StageConnect, Err: err}
	}
	defer session.Close()
	log.Info("remote session established", "host", p.cfg.Remote.Host)

	for _, step := range p.remoteSteps(rel, log) {
		if err := step.run(ctx, session); err != nil {
			if !step.fatal {
				log.Warn("non-fatal stage failed", "stage", step.name, "error", err)
				continue
			}
			return &StageError{Stage: step.name, Err: err}
		}
		log.Info("stage completed", "stage", step.name)
	}

	log.Info("release deployed", "tag", rel.Tag)
	return nil
}

func (p *Pipeline) build(ctx context.Context, rel Release, log *slog.Logger) error {
	ctx, cancel := withTimeout(ctx, p.cfg.BuildTimeout)
	defer cancel()
	return p.images.BuildImage(ctx, rel.ContextDir, rel.Tag, nil, func(line string) {
		log.Debug("build output", "line", strings.TrimSpace(line))
	})
}

func (p *Pipeline) push(ctx context.Context, rel Release, log *slog.Logger) error {
	ctx, cancel := withTimeout(ctx, p.cfg.PushTimeout)
	defer cancel()
	auth := registry.AuthConfig{
		Username:      p.cfg.Registry.Username,
		Password:      p.cfg.Registry.Password,
		ServerAddress: p.cfg.Registry.Server,
	}
	return p.images.PushImage(ctx, rel.Tag, auth, func(line string) {
		log.Debug("push output", "line", strings.TrimSpace(line))
	})
}

// remoteStep is one typed operation on the deployment host with its own
// success contract. Steps run in order; a fatal failure aborts the rest.
type remoteStep struct {
	name  string
	fatal bool
	run   func(ctx context.Context, exec remote.Executor) error
}

func (p *Pipeline) remoteSteps(rel Release, log *slog.Logger) []remoteStep {
	stack := compose.Stack{ProjectDir: p.cfg.ProjectDir, Files: p.cfg.ComposeFiles}
	return []remoteStep{
		{
			name:  StageRewriteEnv,
			fatal: true,
			run: func(ctx context.Context, exec remote.Executor) error {
				return p.rewriteEnv(ctx, exec, rel, log)
			},
		},
		{
			name:  StageResolve,
			fatal: false,
			run: func(ctx context.Context, exec remote.Executor) error {
				return p.resolveStack(ctx, exec, log)
			},
		},
		{
			name:  StagePull,
			fatal: true,
			run: func(ctx context.Context, exec remote.Executor) error {
				_, err := exec.Run(ctx, stack.PullCommand())
				return err
			},
		},
		{
			name:  StageUp,
			fatal: true,
			run: func(ctx context.Context, exec remote.Executor) error {
				_, err := exec.Run(ctx, stack.UpCommand())
				return err
			},
		},
		{
			name:  StagePrune,
			fatal: false,
			run: func(ctx context.Context, exec remote.Executor) error {
				_, err := exec.Run(ctx, "docker image prune -af")
				return err
			},
		},
	}
}

// rewriteEnv points the image variable in the remote environment file at the
// release tag. The substitution touches exactly one line; when the file
// already references the tag nothing is written at all.
func (p *Pipeline) rewriteEnv(ctx context.Context, exec remote.Executor, rel Release, log *slog.Logger) error {
	current, err := exec.Run(ctx, p.readFileCommand(p.cfg.EnvFilePath))
	if err != nil {
		return fmt.Errorf("read environment file: %w", err)
	}
	rewritten, found := envfile.Rewrite(current, p.cfg.ImageVar, rel.Tag)
	if !found {
		if p.cfg.AllowMissingImageVar {
			log.Warn("image variable absent from environment file, rewrite skipped", "var", p.cfg.ImageVar)
			return nil
		}
		return fmt.Errorf("%w: %s", envfile.ErrKeyNotFound, p.cfg.ImageVar)
	}
	if bytes.Equal(rewritten, current) {
		log.Info("environment file already references release tag", "tag", rel.Tag)
		return nil
	}
	substitution, err := envfile.SedCommand(p.cfg.EnvFilePath, p.cfg.ImageVar, rel.Tag)
	if err != nil {
		return err
	}
	if _, err := exec.Run(ctx, fmt.Sprintf("cd %s && %s", p.cfg.ProjectDir, substitution)); err != nil {
		return fmt.Errorf("apply substitution: %w", err)
	}
	return nil
}

// resolveStack merges the manifest layers and logs the image every service
// resolves to after the rewrite. Advisory: a stack that never interpolates
// the image variable is a misconfiguration worth flagging before pull runs.
func (p *Pipeline) resolveStack(ctx context.Context, exec remote.Executor, log *slog.Logger) error {
	layers := make([][]byte, 0, len(p.cfg.ComposeFiles))
	for _, file := range p.cfg.ComposeFiles {
		raw, err := exec.Run(ctx, p.readFileCommand(file))
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", file, err)
		}
		layers = append(layers, raw)
	}
	images, err := compose.MergeImages(layers...)
	if err != nil {
		return err
	}
	if !compose.ReferencesVar(images, p.cfg.ImageVar) {
		log.Warn("no service interpolates the image variable", "var", p.cfg.ImageVar)
	}
	envRaw, err := exec.Run(ctx, p.readFileCommand(p.cfg.EnvFilePath))
	if err != nil {
		return fmt.Errorf("read environment file: %w", err)
	}
	for name, image := range compose.ResolveImages(images, envfile.ParseEnv(envRaw)) {
		if image != "" {
			log.Info("service image resolved", "service_name", name, "image", image)
		}
	}
	return nil
}

func (p *Pipeline) readFileCommand(file string) string {
	return fmt.Sprintf("cd %s && cat %s", p.cfg.ProjectDir, file)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
