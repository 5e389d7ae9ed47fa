package docker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
)

// PushImage publishes a locally built image under its tag. Credentials travel
// only in the request header; they are never echoed into output callbacks.
// The registry's own atomicity is relied upon: an error at any point means
// the tag must not be treated as a valid release.
func (c *Client) PushImage(ctx context.Context, tag string, auth registry.AuthConfig, onOutput OutputCallback) error {
	if c.inner == nil {
		return fmt.Errorf("docker client not initialized")
	}
	if tag == "" {
		return fmt.Errorf("image tag cannot be empty")
	}
	encoded, err := encodeAuth(auth)
	if err != nil {
		return fmt.Errorf("encode registry auth: %w", err)
	}
	resp, err := c.inner.ImagePush(ctx, tag, image.PushOptions{RegistryAuth: encoded})
	if err != nil {
		return fmt.Errorf("docker image push: %w", err)
	}
	defer resp.Close()
	if err := drainStream(resp, onOutput); err != nil {
		return fmt.Errorf("docker image push: %w", err)
	}
	return nil
}

func encodeAuth(auth registry.AuthConfig) (string, error) {
	buf, err := json.Marshal(auth)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
