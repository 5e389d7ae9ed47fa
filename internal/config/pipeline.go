package config

import (
	"strings"
	"time"
)

// RegistryConfig carries image registry credentials. Values are injected at
// construction time and must never be written to logs or remote files.
type RegistryConfig struct {
	Server   string
	Username string
	Password string
}

// RemoteConfig describes the single deployment host and how to reach it.
type RemoteConfig struct {
	Host           string
	Port           int
	User           string
	KeyPath        string
	KnownHostsPath string
	DialTimeout    time.Duration
	CommandTimeout time.Duration
}

// PipelineConfig holds everything one release pipeline run needs.
type PipelineConfig struct {
	Registry RegistryConfig
	Remote   RemoteConfig

	DockerHost      string
	Namespace       string
	Service         string
	BuildContextDir string
	BuildTimeout    time.Duration
	PushTimeout     time.Duration

	ProjectDir   string
	EnvFilePath  string
	ImageVar     string
	ComposeFiles []string

	// AllowMissingImageVar restores the legacy behavior of silently skipping
	// the rewrite when the variable is absent from the environment file.
	AllowMissingImageVar bool
}

// LoadPipelineConfig constructs a PipelineConfig from environment variables.
func LoadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Registry: RegistryConfig{
			Server:   GetString("REGISTRY_SERVER", "https://index.docker.io/v1/"),
			Username: GetString("REGISTRY_USERNAME", ""),
			Password: GetString("REGISTRY_PASSWORD", ""),
		},
		Remote: RemoteConfig{
			Host:           GetString("DEPLOY_HOST", ""),
			Port:           GetInt("DEPLOY_PORT", 22),
			User:           GetString("DEPLOY_USER", ""),
			KeyPath:        GetString("DEPLOY_KEY_PATH", ""),
			KnownHostsPath: GetString("KNOWN_HOSTS_PATH", defaultKnownHostsPath()),
			DialTimeout:    GetSeconds("REMOTE_DIAL_TIMEOUT_SECONDS", 15),
			CommandTimeout: GetSeconds("REMOTE_CMD_TIMEOUT_SECONDS", 300),
		},
		DockerHost:           GetString("DOCKER_HOST", ""),
		Namespace:            GetString("REGISTRY_NAMESPACE", ""),
		Service:              GetString("SERVICE_NAME", "cd2-backend"),
		BuildContextDir:      GetString("BUILD_CONTEXT_DIR", "."),
		BuildTimeout:         GetSeconds("BUILD_TIMEOUT_SECONDS", 600),
		PushTimeout:          GetSeconds("PUSH_TIMEOUT_SECONDS", 600),
		ProjectDir:           GetString("REMOTE_PROJECT_DIR", "~/cd2"),
		EnvFilePath:          GetString("REMOTE_ENV_FILE", ".env"),
		ImageVar:             GetString("IMAGE_VAR", "DOCKER_IMAGE"),
		ComposeFiles:         splitList(GetString("COMPOSE_FILES", "docker-compose.yml,docker-compose.nginx.yml")),
		AllowMissingImageVar: GetBool("ALLOW_MISSING_IMAGE_VAR", false),
	}
}

func defaultKnownHostsPath() string {
	home := GetString("HOME", "")
	if home == "" {
		return "known_hosts"
	}
	return home + "/.ssh/known_hosts"
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
