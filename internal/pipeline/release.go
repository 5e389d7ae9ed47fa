package pipeline

import (
	"github.com/Seob0707/CD2-BE/internal/docker"
)

// Release is one build-to-deploy attempt. It is created once per pipeline
// invocation and immutable afterwards; a later release supersedes it but
// never rewrites it.
type Release struct {
	Commit     string
	Tag        string
	ContextDir string
}

// NewRelease derives the deterministic image tag for the commit. The same
// commit always yields the same tag, so retries converge instead of drifting.
func NewRelease(namespace, service, commit, contextDir string) (Release, error) {
	tag, err := docker.ImageTag(namespace, service, commit)
	if err != nil {
		return Release{}, err
	}
	return Release{Commit: commit, Tag: tag, ContextDir: contextDir}, nil
}
