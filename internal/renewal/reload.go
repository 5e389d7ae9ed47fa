package renewal

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// DockerReloader triggers proxy reloads by signalling the nginx container.
type DockerReloader struct {
	client    *client.Client
	container string
}

// NewDockerReloader connects to the local engine hosting the proxy container.
func NewDockerReloader(host, container string) (*DockerReloader, error) {
	container = strings.TrimSpace(container)
	if container == "" {
		return nil, fmt.Errorf("container name required")
	}
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}
	return &DockerReloader{client: cli, container: container}, nil
}

// Reload sends SIGHUP so the proxy re-reads configuration and TLS material
// without dropping connections.
func (r *DockerReloader) Reload(ctx context.Context) error {
	if err := r.client.ContainerKill(ctx, r.container, "HUP"); err != nil {
		if errdefs.IsNotFound(err) {
			return fmt.Errorf("proxy container %s not found", r.container)
		}
		return err
	}
	return nil
}

// Ping validates connectivity to the engine, for health reporting.
func (r *DockerReloader) Ping(ctx context.Context) error {
	_, err := r.client.Ping(ctx)
	return err
}

func (r *DockerReloader) Close() error {
	return r.client.Close()
}
