package remote

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/Seob0707/CD2-BE/internal/config"
)

// Session is one authenticated SSH channel to the deployment host.
type Session struct {
	client  *ssh.Client
	timeout time.Duration
}

// Dial opens the channel using key-based identity. Host identity is checked
// against the known-hosts file with an accept-new policy: a host never seen
// before is recorded and trusted, a changed key is rejected. Connection or
// authentication failure here is the correctness boundary that keeps a
// broken run from mutating any remote state.
func Dial(cfg config.RemoteConfig) (*Session, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("deployment host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("deployment user cannot be empty")
	}
	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	hostKeyCallback, err := AcceptNewHostKey(cfg.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("load known hosts: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.DialTimeout,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Session{client: client, timeout: cfg.CommandTimeout}, nil
}

// Run executes one command on the host, blocking until it exits or the
// context (bounded by the configured command timeout) is cancelled.
func (s *Session) Run(ctx context.Context, cmd string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("session not established")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	sess, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("open ssh session: %w", err)
	}
	defer sess.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := sess.CombinedOutput(cmd)
		done <- result{output: output, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return r.output, fmt.Errorf("remote command failed: %w: %s", r.err, string(r.output))
		}
		return r.output, nil
	case <-ctx.Done():
		// Closing the session tears down the remote process channel.
		sess.Close()
		return nil, fmt.Errorf("remote command: %w", ctx.Err())
	}
}

// Close ends the channel. The session must not be reused afterwards.
func (s *Session) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
