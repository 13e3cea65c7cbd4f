// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/networkdirection/platform/services/core/configstore"
	"github.com/networkdirection/platform/services/core/dockerapi"
	"github.com/networkdirection/platform/services/core/handlers"
	"github.com/networkdirection/platform/services/core/observability"
)

func SetupRoutes(router *gin.Engine, global *configstore.GlobalStore,
	plugins *configstore.PluginStore, reload configstore.ReloadSignal,
	connector *dockerapi.Connector, metrics *observability.CoreMetrics,
	registry *prometheus.Registry) {

	router.GET("/api/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry,
		promhttp.HandlerOpts{})))

	// API group
	api := router.Group("/api")
	{
		api.GET("/config", handlers.GetConfig(global))
		api.PATCH("/config", handlers.PatchConfig(global, reload, metrics))

		api.GET("/plugins", handlers.GetPlugins(plugins))
		api.POST("/plugins", handlers.RegisterPlugin(plugins, reload, metrics))
		api.PATCH("/plugins", handlers.UpdatePlugin(plugins, reload, metrics))
		api.DELETE("/plugins", handlers.DeletePlugin(plugins, reload, metrics))

		api.GET("/containers", handlers.ContainerStatus(connector, metrics))
		api.GET("/images", handlers.ListImages(connector))
	}
}
