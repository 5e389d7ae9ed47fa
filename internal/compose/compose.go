// Package compose models the layered compose stack running on the
// deployment host: the backend manifest plus the reverse-proxy manifest,
// merged at invocation time.
package compose

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stack identifies the merged manifest layers inside the remote project
// directory. Later files override earlier ones per service, mirroring the
// semantics of repeated -f flags.
type Stack struct {
	ProjectDir string
	Files      []string
}

type manifest struct {
	Services map[string]service `yaml:"services"`
}

type service struct {
	Image string `yaml:"image"`
}

// MergeImages parses the raw manifest layers and returns the image reference
// declared for each service, with later layers overriding earlier ones.
// Services without an image (build-only) map to the empty string.
func MergeImages(layers ...[]byte) (map[string]string, error) {
	images := make(map[string]string)
	for i, raw := range layers {
		var m manifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parse manifest layer %d: %w", i+1, err)
		}
		for name, svc := range m.Services {
			if svc.Image != "" {
				images[name] = svc.Image
				continue
			}
			if _, ok := images[name]; !ok {
				images[name] = ""
			}
		}
	}
	return images, nil
}

var interpolation = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ResolveImages substitutes ${VAR} and ${VAR:-default} references in image
// values against the environment file entries, the way compose does when it
// loads the stack.
func ResolveImages(images map[string]string, env map[string]string) map[string]string {
	resolved := make(map[string]string, len(images))
	for name, image := range images {
		resolved[name] = interpolation.ReplaceAllStringFunc(image, func(match string) string {
			groups := interpolation.FindStringSubmatch(match)
			if value, ok := env[groups[1]]; ok && value != "" {
				return value
			}
			return groups[3]
		})
	}
	return resolved
}

// ReferencesVar reports whether any service's raw image value interpolates
// the given variable. Used as a preflight check before the stack is told to
// pull an image the rewritten variable is supposed to select.
func ReferencesVar(images map[string]string, name string) bool {
	needle := "${" + name
	for _, image := range images {
		if strings.Contains(image, needle) {
			return true
		}
	}
	return false
}

func (s Stack) fileArgs() string {
	parts := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		parts = append(parts, "-f "+f)
	}
	return strings.Join(parts, " ")
}

// PullCommand renders the remote invocation that fetches every image the
// merged stack references. It must return success before up is issued.
func (s Stack) PullCommand() string {
	return fmt.Sprintf("cd %s && docker compose %s pull", s.ProjectDir, s.fileArgs())
}

// UpCommand renders the remote invocation that recreates changed services.
// Compose itself leaves services whose configuration and image are unchanged
// running, which is what keeps a re-run of the same release a no-op.
func (s Stack) UpCommand() string {
	return fmt.Sprintf("cd %s && docker compose %s up -d --build --remove-orphans", s.ProjectDir, s.fileArgs())
}
