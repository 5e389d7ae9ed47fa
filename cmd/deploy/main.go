package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Seob0707/CD2-BE/internal/config"
	"github.com/Seob0707/CD2-BE/internal/docker"
	"github.com/Seob0707/CD2-BE/internal/logger"
	"github.com/Seob0707/CD2-BE/internal/pipeline"
	"github.com/Seob0707/CD2-BE/internal/remote"
)

func main() {
	commitFlag := flag.String("commit", "", "Commit identifier for this release (default COMMIT_SHA)")
	logLevel := flag.String("log-level", config.GetString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg := config.LoadPipelineConfig()
	log := logger.New("deploy", logger.ParseLevel(*logLevel))

	commit := strings.TrimSpace(*commitFlag)
	if commit == "" {
		commit = strings.TrimSpace(config.GetString("COMMIT_SHA", ""))
	}
	if commit == "" {
		log.Error("commit identifier required (--commit or COMMIT_SHA)")
		os.Exit(1)
	}

	if cfg.Registry.Password == "" {
		password, err := promptPassword()
		if err != nil {
			log.Error("registry password required", "error", err)
			os.Exit(1)
		}
		cfg.Registry.Password = password
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dockerClient, err := docker.New(cfg.DockerHost)
	if err != nil {
		log.Error("failed to create docker client", "error", err)
		os.Exit(1)
	}
	defer dockerClient.Close()

	if err := dockerClient.Ping(ctx); err != nil {
		log.Error("docker ping failed", "error", err)
		os.Exit(1)
	}

	dial := func(rc config.RemoteConfig) (pipeline.RemoteSession, error) {
		return remote.Dial(rc)
	}

	p := pipeline.New(dockerClient, dial, cfg, log)
	if err := p.Run(ctx, commit); err != nil {
		log.Error("release failed", "error", err)
		os.Exit(1)
	}
}

// promptPassword asks for the registry password when none was injected and
// stdin is a terminal. CI environments must supply REGISTRY_PASSWORD.
func promptPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("REGISTRY_PASSWORD is not set and stdin is not a terminal")
	}
	fmt.Print("Registry password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	return password, nil
}
