package renewal

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CertbotRenewer shells out to certbot's renew subcommand with a webroot
// challenge directory shared with the reverse proxy.
type CertbotRenewer struct {
	binary  string
	webroot string
	certDir string
}

// NewCertbotRenewer configures the certbot invocation.
func NewCertbotRenewer(binary, webroot, certDir string) *CertbotRenewer {
	if binary == "" {
		binary = "certbot"
	}
	return &CertbotRenewer{binary: binary, webroot: webroot, certDir: certDir}
}

// Renew runs certbot renew. Certbot itself no-ops on certificates that are
// not near expiry; that case is reported as renewed=false with no error.
func (r *CertbotRenewer) Renew(ctx context.Context) (bool, error) {
	args := []string{"renew", "--non-interactive"}
	if r.webroot != "" {
		args = append(args, "--webroot", "-w", r.webroot)
	}
	if r.certDir != "" {
		args = append(args, "--config-dir", r.certDir)
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("certbot renew: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if strings.Contains(strings.ToLower(string(output)), "no renewals were attempted") {
		return false, nil
	}
	return true, nil
}
