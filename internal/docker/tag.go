package docker

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// ImageTag derives the versioned image name for a release:
// <namespace>/<service>:<commit>. Derivation is deterministic so that
// re-running a pipeline for the same commit converges on the same tag.
func ImageTag(namespace, service, commit string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	service = strings.TrimSpace(service)
	commit = strings.TrimSpace(commit)
	if namespace == "" {
		return "", fmt.Errorf("registry namespace cannot be empty")
	}
	if service == "" {
		return "", fmt.Errorf("service name cannot be empty")
	}
	if commit == "" {
		return "", fmt.Errorf("commit identifier cannot be empty")
	}
	tag := fmt.Sprintf("%s/%s:%s", namespace, service, commit)
	ref, err := reference.ParseNormalizedNamed(tag)
	if err != nil {
		return "", fmt.Errorf("invalid image tag %q: %w", tag, err)
	}
	if _, ok := ref.(reference.Tagged); !ok {
		return "", fmt.Errorf("invalid image tag %q: missing tag component", tag)
	}
	return tag, nil
}
