package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/archive"
)

// BuildImage creates an image from the build context directory using the
// default Dockerfile and labels it with the provided tag. The build must fail
// cleanly with no remote side effects; errors embedded in the output stream
// are surfaced as build failures.
func (c *Client) BuildImage(ctx context.Context, dir, tag string, buildArgs map[string]*string, onOutput OutputCallback) error {
	if c.inner == nil {
		return fmt.Errorf("docker client not initialized")
	}
	if dir == "" {
		return fmt.Errorf("build directory cannot be empty")
	}
	if tag == "" {
		return fmt.Errorf("image tag cannot be empty")
	}
	buildCtx, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("create build context: %w", err)
	}
	defer buildCtx.Close()

	opts := types.ImageBuildOptions{
		Tags:        []string{tag},
		Remove:      true,
		ForceRemove: true,
		BuildArgs:   buildArgs,
	}
	resp, err := c.inner.ImageBuild(ctx, buildCtx, opts)
	if err != nil {
		return fmt.Errorf("docker image build: %w", err)
	}
	defer resp.Body.Close()
	if err := drainStream(resp.Body, onOutput); err != nil {
		return fmt.Errorf("docker image build: %w", err)
	}
	return nil
}
