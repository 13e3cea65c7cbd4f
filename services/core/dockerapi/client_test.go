// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dockerapi

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime is an in-memory runtimeAPI for negotiation and status tests.
type fakeRuntime struct {
	pingErr       error
	containers    []types.Container
	listErr       error
	inspects      map[string]types.ContainerJSON
	imageInspects map[string]types.ImageInspect
	images        []image.Summary
	closed        bool
}

func (f *fakeRuntime) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeRuntime) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	return f.containers, f.listErr
}

func (f *fakeRuntime) ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error) {
	inspect, ok := f.inspects[containerID]
	if !ok {
		return types.ContainerJSON{}, errors.New("no such container")
	}
	return inspect, nil
}

func (f *fakeRuntime) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	inspect, ok := f.imageInspects[imageID]
	if !ok {
		return types.ImageInspect{}, nil, errors.New("no such image")
	}
	return inspect, nil, nil
}

func (f *fakeRuntime) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	return f.images, nil
}

func (f *fakeRuntime) Close() error {
	f.closed = true
	return nil
}

// missingSocket returns a path guaranteed not to exist.
func missingSocket(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "docker.sock")
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, "host.docker.internal", cfg.Host)
	assert.Equal(t, 2375, cfg.Port)
	assert.Equal(t, TransportAuto, cfg.Transport)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/var/run/docker.sock", cfg.SocketPath)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CONTAINER_HOST", "runtime.internal")
	t.Setenv("CONTAINER_PORT", "2376")
	t.Setenv("CONTAINER_TRANSPORT", "tcp")
	t.Setenv("CONTAINER_TIMEOUT_SECONDS", "9")

	cfg := ConfigFromEnv()
	assert.Equal(t, "runtime.internal", cfg.Host)
	assert.Equal(t, 2376, cfg.Port)
	assert.Equal(t, TransportTCP, cfg.Transport)
	assert.Equal(t, 9*time.Second, cfg.Timeout)
}

func TestConfigFromEnv_MalformedValues(t *testing.T) {
	t.Setenv("CONTAINER_PORT", "not-a-port")
	t.Setenv("CONTAINER_TIMEOUT_SECONDS", "-3")

	cfg := ConfigFromEnv()
	assert.Equal(t, 2375, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestBuildCandidates_SocketFirstWhenPresent(t *testing.T) {
	cfg := Config{Host: "example", Port: 2375}
	candidates := BuildCandidates(cfg, "linux", true)

	require.Len(t, candidates, 4)
	assert.Equal(t, "unix:///var/run/docker.sock", candidates[0].Host)
	assert.Equal(t, "tcp://example:2375", candidates[1].Host)
	assert.Equal(t, "tcp://localhost:2375", candidates[2].Host)
	assert.Equal(t, "tcp://127.0.0.1:2375", candidates[3].Host)
}

func TestBuildCandidates_NoSocketOnLinux(t *testing.T) {
	candidates := BuildCandidates(Config{}, "linux", false)

	require.Len(t, candidates, 3)
	assert.Equal(t, "tcp://host.docker.internal:2375", candidates[0].Host)
}

func TestBuildCandidates_WindowsNamedPipe(t *testing.T) {
	candidates := BuildCandidates(Config{}, "windows", false)

	require.Len(t, candidates, 4)
	assert.Equal(t, "npipe:////./pipe/docker_engine", candidates[0].Host)
	assert.Equal(t, "named pipe", candidates[0].Method)
}

func TestBuildCandidates_ForcedSocket(t *testing.T) {
	// Forced socket is attempted even when the socket file is absent.
	candidates := BuildCandidates(Config{Transport: TransportSocket}, "linux", false)

	require.Len(t, candidates, 4)
	assert.Equal(t, "unix:///var/run/docker.sock", candidates[0].Host)
}

func TestBuildCandidates_ForcedTCPSkipsSocket(t *testing.T) {
	candidates := BuildCandidates(Config{Transport: TransportTCP}, "linux", true)

	require.Len(t, candidates, 3)
	for _, cand := range candidates {
		assert.Contains(t, cand.Host, "tcp://")
	}
}

func TestConnector_Connect_FirstSuccessWins(t *testing.T) {
	var attempted []string
	healthy := &fakeRuntime{}

	c := &Connector{
		cfg: Config{Transport: TransportTCP, SocketPath: missingSocket(t)}.withDefaults(),
		newClient: func(host string, timeout time.Duration) (runtimeAPI, error) {
			attempted = append(attempted, host)
			if len(attempted) == 1 {
				// Primary host refuses the probe.
				return &fakeRuntime{pingErr: errors.New("connection refused")}, nil
			}
			return healthy, nil
		},
	}

	api, err := c.Connect(context.Background())
	require.NoError(t, err)
	defer api.Close()

	assert.Equal(t, []string{
		"tcp://host.docker.internal:2375",
		"tcp://localhost:2375",
	}, attempted)
	assert.Equal(t, "localhost fallback", api.Method)
}

func TestConnector_Connect_FailedProbeClosesClient(t *testing.T) {
	unreachable := &fakeRuntime{pingErr: errors.New("timeout")}
	healthy := &fakeRuntime{}
	calls := 0

	c := &Connector{
		cfg: Config{Transport: TransportTCP, SocketPath: missingSocket(t)}.withDefaults(),
		newClient: func(host string, timeout time.Duration) (runtimeAPI, error) {
			calls++
			if calls == 1 {
				return unreachable, nil
			}
			return healthy, nil
		},
	}

	api, err := c.Connect(context.Background())
	require.NoError(t, err)
	defer api.Close()

	assert.True(t, unreachable.closed, "losing candidate must be closed")
	assert.False(t, healthy.closed)
}

func TestConnector_Connect_Exhaustion(t *testing.T) {
	probeErr := errors.New("connection refused")
	c := &Connector{
		cfg: Config{Transport: TransportTCP, SocketPath: missingSocket(t)}.withDefaults(),
		newClient: func(host string, timeout time.Duration) (runtimeAPI, error) {
			return &fakeRuntime{pingErr: probeErr}, nil
		},
	}

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTransport)
	assert.ErrorIs(t, err, probeErr)
}
