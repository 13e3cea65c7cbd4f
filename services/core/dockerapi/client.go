// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dockerapi connects the core service to the container runtime
// and maps opaque containers onto logical platform services via image
// labels.
//
// # Transport negotiation
//
// The runtime may be reachable over a local socket, a Windows named pipe,
// or TCP, depending on how the host is set up. Connect builds an ordered
// candidate list, probes each transport with a liveness ping, and settles
// on the first that answers. The CONTAINER_TRANSPORT environment override
// (auto|socket|tcp) can force either branch.
//
// # Service contract
//
// Platform images carry a custom service-name label plus the standard OCI
// title/description/version labels:
//
//	net.networkdirection.service.name      logical service name
//	net.networkdirection.plugin.name       plugin name (optional)
//	org.opencontainers.image.title
//	org.opencontainers.image.description
//	org.opencontainers.image.version
package dockerapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// Image label keys consumed from the runtime.
const (
	ServiceNameLabel = "net.networkdirection.service.name"
	PluginNameLabel  = "net.networkdirection.plugin.name"

	titleLabel       = "org.opencontainers.image.title"
	descriptionLabel = "org.opencontainers.image.description"
	versionLabel     = "org.opencontainers.image.version"
)

// Transport override values for Config.Transport / CONTAINER_TRANSPORT.
const (
	TransportAuto   = "auto"
	TransportSocket = "socket"
	TransportTCP    = "tcp"
)

const (
	defaultHost       = "host.docker.internal"
	defaultPort       = 2375
	defaultTimeout    = 5 * time.Second
	defaultSocketPath = "/var/run/docker.sock"
	windowsPipeHost   = "npipe:////./pipe/docker_engine"
)

var (
	// ErrNoTransport is returned when every candidate transport has been
	// tried and failed. It wraps the last underlying error.
	ErrNoTransport = errors.New("all runtime transports failed")

	// ErrNoContainers is returned when the runtime reports zero running
	// containers.
	ErrNoContainers = errors.New("no containers running")
)

// Config holds the negotiation inputs.
type Config struct {
	// Host and Port form the primary TCP candidate.
	// Defaults: host.docker.internal:2375.
	Host string
	Port int

	// Transport is the override: auto (default), socket, or tcp.
	Transport string

	// Timeout bounds each connection attempt's liveness probe.
	Timeout time.Duration

	// SocketPath is the local runtime socket probed in auto mode.
	SocketPath string
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Transport == "" {
		c.Transport = TransportAuto
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.SocketPath == "" {
		c.SocketPath = defaultSocketPath
	}
	return c
}

// ConfigFromEnv builds a Config from the CONTAINER_HOST, CONTAINER_PORT,
// CONTAINER_TRANSPORT and CONTAINER_TIMEOUT_SECONDS environment
// variables, falling back to defaults for anything unset or malformed.
func ConfigFromEnv() Config {
	cfg := Config{
		Host:      os.Getenv("CONTAINER_HOST"),
		Transport: os.Getenv("CONTAINER_TRANSPORT"),
	}
	if port := os.Getenv("CONTAINER_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.Port); err != nil {
			slog.Warn("Invalid CONTAINER_PORT, using default", "value", port)
			cfg.Port = 0
		}
	}
	if secs := os.Getenv("CONTAINER_TIMEOUT_SECONDS"); secs != "" {
		var n int
		if _, err := fmt.Sscanf(secs, "%d", &n); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("Invalid CONTAINER_TIMEOUT_SECONDS, using default", "value", secs)
		}
	}
	return cfg.withDefaults()
}

// Candidate is one transport to try: a client host URL plus a
// human-readable method name for logs.
type Candidate struct {
	Host   string
	Method string
}

// BuildCandidates produces the ordered transport list for one connection
// attempt. goos and socketExists are parameters so the order is testable
// off-platform.
//
// Order: unless TCP is forced, the local socket (when present, or always
// when socket is forced) or the platform named pipe comes first; then the
// configured TCP host, then the two well-known loopback fallbacks.
func BuildCandidates(cfg Config, goos string, socketExists bool) []Candidate {
	cfg = cfg.withDefaults()
	var candidates []Candidate

	if cfg.Transport != TransportTCP {
		forced := cfg.Transport == TransportSocket
		switch {
		case (socketExists || forced) && goos != "windows":
			candidates = append(candidates, Candidate{
				Host:   "unix://" + cfg.SocketPath,
				Method: "local socket",
			})
		case goos == "windows":
			candidates = append(candidates, Candidate{
				Host:   windowsPipeHost,
				Method: "named pipe",
			})
		}
	}

	candidates = append(candidates,
		Candidate{
			Host:   fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port),
			Method: "configured tcp host",
		},
		Candidate{
			Host:   "tcp://localhost:2375",
			Method: "localhost fallback",
		},
		Candidate{
			Host:   "tcp://127.0.0.1:2375",
			Method: "loopback fallback",
		},
	)
	return candidates
}

// runtimeAPI is the slice of the runtime client this package consumes.
// Tests substitute fakes; production uses the real docker client.
type runtimeAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	Close() error
}

// Connector negotiates runtime connections. One Connector is shared; each
// query acquires its own short-lived API handle via Connect.
type Connector struct {
	cfg       Config
	newClient func(host string, timeout time.Duration) (runtimeAPI, error)
}

// NewConnector returns a Connector for the given configuration.
func NewConnector(cfg Config) *Connector {
	return &Connector{
		cfg: cfg.withDefaults(),
		newClient: func(host string, timeout time.Duration) (runtimeAPI, error) {
			return client.NewClientWithOpts(
				client.WithHost(host),
				client.WithTimeout(timeout),
				client.WithAPIVersionNegotiation(),
			)
		},
	}
}

// API is a live connection to the container runtime, scoped to one query.
// Callers must Close it when the query completes.
type API struct {
	cli     runtimeAPI
	timeout time.Duration

	// Method names the transport that won negotiation.
	Method string
}

// Connect walks the candidate list in order and returns an API on the
// first transport whose liveness probe answers. Individual failures are
// logged and retried on the next candidate; only full exhaustion is an
// error, wrapping the last underlying failure.
func (c *Connector) Connect(ctx context.Context) (*API, error) {
	candidates := BuildCandidates(c.cfg, runtime.GOOS, fileExists(c.cfg.SocketPath))

	var lastErr error
	for _, cand := range candidates {
		cli, err := c.newClient(cand.Host, c.cfg.Timeout)
		if err != nil {
			slog.Warn("Runtime transport unavailable",
				"method", cand.Method, "host", cand.Host, "error", err)
			lastErr = err
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		_, err = cli.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Warn("Runtime liveness probe failed",
				"method", cand.Method, "host", cand.Host, "error", err)
			cli.Close()
			lastErr = err
			continue
		}

		slog.Debug("Connected to container runtime",
			"method", cand.Method, "host", cand.Host)
		return &API{cli: cli, timeout: c.cfg.Timeout, Method: cand.Method}, nil
	}

	return nil, fmt.Errorf("%w: last error: %w", ErrNoTransport, lastErr)
}

// Close releases the underlying runtime connection.
func (a *API) Close() error {
	return a.cli.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
