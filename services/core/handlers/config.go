// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/networkdirection/platform/services/core/configstore"
	"github.com/networkdirection/platform/services/core/datatypes"
	"github.com/networkdirection/platform/services/core/observability"
)

// GetConfig returns the current global configuration document, re-read
// from durable storage on every call.
func GetConfig(store *configstore.GlobalStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Debug("Global config requested through API")

		doc, err := store.Load()
		if err != nil {
			slog.Error("Failed to load global config", "error", err)
			errorResponse(c, http.StatusInternalServerError, "Failed to load configuration")
			return
		}
		successResponse(c, http.StatusOK, "", gin.H{"config": doc})
	}
}

// PatchConfig applies a category-scoped update to the global
// configuration and touches the worker reload signal on success.
func PatchConfig(store *configstore.GlobalStore, reload configstore.ReloadSignal,
	metrics *observability.CoreMetrics) gin.HandlerFunc {

	return func(c *gin.Context) {
		var patch datatypes.ConfigPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			errorResponse(c, http.StatusBadRequest, "No data provided")
			return
		}

		if err := store.Update(patch); err != nil {
			metrics.ConfigUpdatesTotal.WithLabelValues(patch.Category, "error").Inc()
			status := http.StatusBadRequest
			if errors.Is(err, configstore.ErrPersist) {
				status = http.StatusInternalServerError
			}
			errorResponse(c, status, "Failed to update configuration")
			return
		}

		metrics.ConfigUpdatesTotal.WithLabelValues(patch.Category, "success").Inc()
		reload.Touch()
		successResponse(c, http.StatusOK, "Configuration updated successfully", nil)
	}
}
