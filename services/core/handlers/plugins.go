// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/networkdirection/platform/services/core/configstore"
	"github.com/networkdirection/platform/services/core/datatypes"
	"github.com/networkdirection/platform/services/core/observability"
)

// PluginNameHeader selects the plugin on GET /api/plugins. The value
// "all" lists the whole collection.
const PluginNameHeader = "X-Plugin-Name"

// GetPlugins returns one plugin by name or the full collection.
func GetPlugins(store *configstore.PluginStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		pluginName := c.GetHeader(PluginNameHeader)
		if pluginName == "" {
			errorResponse(c, http.StatusBadRequest, "Missing X-Plugin-Name header")
			return
		}

		if pluginName == "all" {
			plugins, err := store.Load()
			if err != nil {
				errorResponse(c, http.StatusInternalServerError, "Failed to load plugins")
				return
			}
			successResponse(c, http.StatusOK, "", gin.H{"plugins": plugins})
			return
		}

		plugin, err := store.Get(pluginName)
		if err != nil {
			if errors.Is(err, configstore.ErrNotFound) {
				errorResponse(c, http.StatusNotFound,
					fmt.Sprintf("Plugin %s not found", pluginName))
				return
			}
			errorResponse(c, http.StatusInternalServerError, "Failed to load plugins")
			return
		}
		successResponse(c, http.StatusOK, "", gin.H{"plugin": plugin})
	}
}

// RegisterPlugin adds a new plugin to the registry.
func RegisterPlugin(store *configstore.PluginStore, reload configstore.ReloadSignal,
	metrics *observability.CoreMetrics) gin.HandlerFunc {

	return func(c *gin.Context) {
		var plugin datatypes.Plugin
		if err := c.ShouldBindJSON(&plugin); err != nil {
			errorResponse(c, http.StatusBadRequest, bindFailureMessage(err, "Failed to add plugin"))
			return
		}

		if err := store.Register(plugin); err != nil {
			metrics.PluginOpsTotal.WithLabelValues("register", "error").Inc()
			errorResponse(c, mutationStatus(err), "Failed to add plugin")
			return
		}

		metrics.PluginOpsTotal.WithLabelValues("register", "success").Inc()
		reload.Touch()
		successResponse(c, http.StatusOK, "Plugin added successfully", nil)
	}
}

// UpdatePlugin overwrites an existing plugin, located by the plugin_name
// key since the name itself is mutable.
func UpdatePlugin(store *configstore.PluginStore, reload configstore.ReloadSignal,
	metrics *observability.CoreMetrics) gin.HandlerFunc {

	return func(c *gin.Context) {
		var update datatypes.PluginUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			errorResponse(c, http.StatusBadRequest,
				bindFailureMessage(err, "Failed to update plugin configuration"))
			return
		}

		if err := store.Update(update); err != nil {
			metrics.PluginOpsTotal.WithLabelValues("update", "error").Inc()
			errorResponse(c, mutationStatus(err), "Failed to update plugin configuration")
			return
		}

		metrics.PluginOpsTotal.WithLabelValues("update", "success").Inc()
		reload.Touch()
		successResponse(c, http.StatusOK, "Plugin updated successfully", nil)
	}
}

// DeletePlugin removes a plugin named in the request body.
func DeletePlugin(store *configstore.PluginStore, reload configstore.ReloadSignal,
	metrics *observability.CoreMetrics) gin.HandlerFunc {

	return func(c *gin.Context) {
		var req datatypes.PluginDelete
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "Missing plugin name in request body")
			return
		}

		if err := store.Delete(req.Name); err != nil {
			metrics.PluginOpsTotal.WithLabelValues("delete", "error").Inc()
			errorResponse(c, mutationStatus(err), "Plugin not found or could not be deleted")
			return
		}

		metrics.PluginOpsTotal.WithLabelValues("delete", "success").Inc()
		reload.Touch()
		successResponse(c, http.StatusOK, "Plugin deleted successfully", nil)
	}
}

// mutationStatus maps registry errors onto HTTP statuses: persistence
// failures are server-side, everything else is a caller problem.
func mutationStatus(err error) int {
	if errors.Is(err, configstore.ErrPersist) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// bindFailureMessage picks the response message for a bind error. A body
// that parsed but failed field validation (bad allowed-ip, missing
// required field) did carry data, so it gets the operation's failure
// message instead of "No data provided".
func bindFailureMessage(err error, validationMsg string) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return validationMsg
	}
	return "No data provided"
}
