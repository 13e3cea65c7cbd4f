// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dockerapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"golang.org/x/sync/errgroup"

	"github.com/networkdirection/platform/services/core/datatypes"
)

// DefaultServices is the fixed set of platform service containers, as
// they are named in the compose file.
var DefaultServices = []string{
	"core",
	"web-interface",
	"security",
	"logging",
	"messaging",
	"scheduler",
}

// statusQueryLimit bounds the concurrent runtime connections opened by a
// default-set query.
const statusQueryLimit = 4

// ContainerStatus resolves the status of the container backing the given
// logical service.
//
// A container matches when its image carries the service-name label or
// the plugin-name label equal to serviceName. When several containers
// match, the most recently created one wins. When none match, the
// "container not found" placeholder is returned. Zero running containers
// is an error (ErrNoContainers).
func (a *API) ContainerStatus(ctx context.Context, serviceName string) (datatypes.ServiceStatus, error) {
	containers, err := a.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return datatypes.ServiceStatus{}, fmt.Errorf("listing containers: %w", err)
	}
	if len(containers) == 0 {
		return datatypes.ServiceStatus{}, ErrNoContainers
	}

	var match *types.Container
	var matchLabels map[string]string
	for i := range containers {
		ctr := &containers[i]
		labels := a.imageLabels(ctx, ctr)
		if labels[ServiceNameLabel] != serviceName &&
			(labels[PluginNameLabel] == "" || labels[PluginNameLabel] != serviceName) {
			continue
		}
		if match == nil || ctr.Created > match.Created {
			match = ctr
			matchLabels = labels
		}
	}

	if match == nil {
		slog.Warn("Container not found or not running", "service", serviceName)
		return datatypes.NotFoundStatus(serviceName), nil
	}

	return datatypes.ServiceStatus{
		Name:        containerName(match),
		Title:       labelOrDefault(matchLabels, titleLabel, "Unknown Title"),
		Description: labelOrDefault(matchLabels, descriptionLabel, "No description available"),
		ServiceName: serviceName,
		Version:     labelOrDefault(matchLabels, versionLabel, "Unknown Version"),
		Status:      match.State,
		Health:      a.containerHealth(ctx, match.ID),
	}, nil
}

// ListImages returns the platform images on the runtime host: tagged,
// labeled images that carry the service-name label.
func (a *API) ListImages(ctx context.Context) ([]datatypes.ImageInfo, error) {
	images, err := a.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	infos := make([]datatypes.ImageInfo, 0, len(images))
	for _, img := range images {
		if len(img.RepoTags) == 0 || len(img.Labels) == 0 {
			continue
		}
		serviceName, ok := img.Labels[ServiceNameLabel]
		if !ok || serviceName == "" {
			continue
		}
		infos = append(infos, datatypes.ImageInfo{
			Tags:        img.RepoTags,
			Title:       labelOrDefault(img.Labels, titleLabel, "Unknown Title"),
			Description: labelOrDefault(img.Labels, descriptionLabel, "No description available"),
			ServiceName: serviceName,
			Version:     labelOrDefault(img.Labels, versionLabel, "Unknown Version"),
		})
	}
	return infos, nil
}

// ServiceStatuses resolves every named service, fanning out with a
// bounded errgroup. Each query negotiates its own short-lived runtime
// connection, matching the one-handle-per-query resource model. Results
// keep input order. The first hard failure aborts the batch.
func (c *Connector) ServiceStatuses(ctx context.Context, services []string) ([]datatypes.ServiceStatus, error) {
	results := make([]datatypes.ServiceStatus, len(services))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statusQueryLimit)
	for i, service := range services {
		g.Go(func() error {
			api, err := c.Connect(ctx)
			if err != nil {
				return fmt.Errorf("service %s: %w", service, err)
			}
			defer api.Close()

			status, err := api.ContainerStatus(ctx, service)
			if err != nil {
				return fmt.Errorf("service %s: %w", service, err)
			}
			results[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// imageLabels fetches the labels of the container's image. When the
// image cannot be inspected the container's own labels are used; docker
// copies image labels onto containers at create time.
func (a *API) imageLabels(ctx context.Context, ctr *types.Container) map[string]string {
	inspect, _, err := a.cli.ImageInspectWithRaw(ctx, ctr.ImageID)
	if err != nil || inspect.Config == nil {
		slog.Debug("Falling back to container labels",
			"container", containerName(ctr), "error", err)
		return ctr.Labels
	}
	return inspect.Config.Labels
}

// containerHealth reads the runtime-reported health string, "unknown"
// when the container has no health check configured.
func (a *API) containerHealth(ctx context.Context, containerID string) string {
	inspect, err := a.cli.ContainerInspect(ctx, containerID)
	if err != nil || inspect.State == nil || inspect.State.Health == nil {
		return "unknown"
	}
	return inspect.State.Health.Status
}

func containerName(ctr *types.Container) string {
	if len(ctr.Names) == 0 {
		return ctr.ID
	}
	return strings.TrimPrefix(ctr.Names[0], "/")
}

func labelOrDefault(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}
