// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// ServiceStatus is the normalized liveness snapshot for one logical
// service, derived from container labels and runtime-reported state.
// Computed fresh per query, never persisted.
type ServiceStatus struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ServiceName string `json:"service_name"`
	Version     string `json:"version"`
	Status      string `json:"status"`
	Health      string `json:"health"`
}

// NotFoundStatus returns the placeholder record reported when no running
// container carries the requested service label.
func NotFoundStatus(service string) ServiceStatus {
	return ServiceStatus{
		Name:        service,
		Title:       "missing",
		Description: "unknown",
		ServiceName: service,
		Version:     "unknown",
		Status:      "container not found",
		Health:      "unknown",
	}
}

// ImageInfo describes one platform image on the runtime host, taken from
// its OCI labels.
type ImageInfo struct {
	Tags        []string `json:"tags"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ServiceName string   `json:"service_name"`
	Version     string   `json:"version"`
}
