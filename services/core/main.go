// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"

	"github.com/networkdirection/platform/pkg/logging"
	"github.com/networkdirection/platform/services/core/configstore"
	"github.com/networkdirection/platform/services/core/datatypes"
	"github.com/networkdirection/platform/services/core/dockerapi"
	"github.com/networkdirection/platform/services/core/middleware"
	"github.com/networkdirection/platform/services/core/observability"
	"github.com/networkdirection/platform/services/core/routes"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	// Get the collector URL from the env var set in the compose file
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "platform-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("core-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("CORE_PORT")
	if port == "" {
		port = "8086"
	}
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	reloadFile := os.Getenv("RELOAD_FILE")
	if reloadFile == "" {
		reloadFile = "/app/reload.txt"
	}

	datatypes.RegisterValidators()

	audit := configstore.NewAuditLog(os.Getenv("AUDIT_LOG"))
	global := configstore.NewGlobalStore(filepath.Join(configDir, "global.yaml"))
	plugins := configstore.NewPluginStore(filepath.Join(configDir, "plugins.yaml"), audit)
	reload := configstore.ReloadSignal{Path: reloadFile}

	// Fail fast if the global configuration is unreadable. A missing
	// plugins file is fine, it just means nothing is registered yet.
	doc, err := global.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load the global configuration: %v", err)
	}

	// The service log level follows web.logging-level from the document.
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(fmt.Sprint(doc.Web["logging-level"])),
		LogDir:  os.Getenv("LOG_DIR"),
		Service: "core",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	connector := dockerapi.NewConnector(dockerapi.ConfigFromEnv())

	registry := prometheus.NewRegistry()
	metrics := observability.NewCoreMetrics(registry)

	router := gin.Default()
	router.Use(otelgin.Middleware("core-service"))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	routes.SetupRoutes(router, global, plugins, reload, connector, metrics, registry)

	log.Println("Starting the core server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
