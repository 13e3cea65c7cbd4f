// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/networkdirection/platform/services/core/dockerapi"
	"github.com/networkdirection/platform/services/core/observability"
)

// ContainerStatus reports the status of platform services. A ?container=
// query narrows the report to a single service; otherwise all default
// services are queried.
func ContainerStatus(connector *dockerapi.Connector,
	metrics *observability.CoreMetrics) gin.HandlerFunc {

	return func(c *gin.Context) {
		services := dockerapi.DefaultServices
		if name := c.Query("container"); name != "" {
			services = []string{name}
		}

		start := time.Now()
		statuses, err := connector.ServiceStatuses(c.Request.Context(), services)
		metrics.ContainerQuerySeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ContainerQueriesTotal.WithLabelValues("error").Inc()
			errorResponse(c, http.StatusInternalServerError,
				"Failed to query container runtime")
			return
		}

		metrics.ContainerQueriesTotal.WithLabelValues("success").Inc()
		successResponse(c, http.StatusOK, "", gin.H{"services": statuses})
	}
}

// ListImages reports every labelled platform image known to the runtime.
func ListImages(connector *dockerapi.Connector) gin.HandlerFunc {
	return func(c *gin.Context) {
		api, err := connector.Connect(c.Request.Context())
		if err != nil {
			errorResponse(c, http.StatusInternalServerError,
				"Failed to query container runtime")
			return
		}
		defer api.Close()

		images, err := api.ListImages(c.Request.Context())
		if err != nil {
			errorResponse(c, http.StatusInternalServerError,
				"Failed to list images")
			return
		}
		successResponse(c, http.StatusOK, "", gin.H{"images": images})
	}
}
