package remote

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// AcceptNewHostKey returns a host key callback implementing the accept-new
// policy: a host with no recorded key is appended to the known-hosts file on
// first contact, every later session must present the recorded key.
func AcceptNewHostKey(path string) (ssh.HostKeyCallback, error) {
	if path == "" {
		return nil, fmt.Errorf("known hosts path cannot be empty")
	}
	if err := ensureFile(path); err != nil {
		return nil, err
	}
	check, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("parse known hosts: %w", err)
	}
	return func(hostname string, addr net.Addr, key ssh.PublicKey) error {
		err := check(hostname, addr, key)
		if err == nil {
			return nil
		}
		var keyErr *knownhosts.KeyError
		if errors.As(err, &keyErr) && len(keyErr.Want) == 0 {
			// First contact: record the key and trust it.
			if appendErr := appendHostKey(path, hostname, key); appendErr != nil {
				return fmt.Errorf("record host key: %w", appendErr)
			}
			return nil
		}
		return err
	}, nil
}

func ensureFile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create known hosts directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open known hosts: %w", err)
	}
	return f.Close()
}

func appendHostKey(path, hostname string, key ssh.PublicKey) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	line := knownhosts.Line([]string{knownhosts.Normalize(hostname)}, key)
	if _, err := fmt.Fprintln(f, line); err != nil {
		return err
	}
	return nil
}
