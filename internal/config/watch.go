package config

import "time"

// WatchConfig holds runtime configuration for the certificate renewal daemon.
type WatchConfig struct {
	Addr           string
	DockerHost     string
	Period         time.Duration
	AttemptTimeout time.Duration
	CertbotBin     string
	WebrootDir     string
	CertDir        string
	ProxyContainer string
}

// LoadWatchConfig constructs a WatchConfig from environment variables.
func LoadWatchConfig() WatchConfig {
	return WatchConfig{
		Addr:           GetString("CERTWATCH_ADDR", ":5100"),
		DockerHost:     GetString("DOCKER_HOST", ""),
		Period:         GetSeconds("RENEW_PERIOD_SECONDS", 12*60*60),
		AttemptTimeout: GetSeconds("RENEW_ATTEMPT_TIMEOUT_SECONDS", 600),
		CertbotBin:     GetString("CERTBOT_BIN", "certbot"),
		WebrootDir:     GetString("CERTBOT_WEBROOT", "/var/www/certbot"),
		CertDir:        GetString("CERT_DIR", "/etc/letsencrypt"),
		ProxyContainer: GetString("PROXY_CONTAINER", "nginx"),
	}
}
