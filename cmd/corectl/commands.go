// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	apiURL     string
	jsonOutput bool

	rootCmd = &cobra.Command{
		Use:   "corectl",
		Short: "A cli to inspect the Network Direction platform core service",
		Long: `Corectl talks to the core service's HTTP API to read the
				platform configuration, list registered plugins, and
				report the status of the service containers.`,
	}

	// --- Configuration ---
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the global platform configuration",
	}
	configGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Print the global configuration",
		Run:   runConfigGet, // Defined in cmd_config.go
	}

	// --- Plugins ---
	pluginsCmd = &cobra.Command{
		Use:   "plugins",
		Short: "Inspect registered plugins",
	}
	pluginsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List every registered plugin",
		Run:   runPluginsList, // Defined in cmd_plugins.go
	}
	pluginsGetCmd = &cobra.Command{
		Use:   "get [plugin name]",
		Short: "Print a single plugin by name",
		Args:  cobra.ExactArgs(1),
		Run:   runPluginsGet, // Defined in cmd_plugins.go
	}

	// --- Container status ---
	statusCmd = &cobra.Command{
		Use:   "status [service name]",
		Short: "Report the status of platform service containers",
		Args:  cobra.MaximumNArgs(1),
		Run:   runStatusCommand, // Defined in cmd_status.go
	}
)

func init() {
	defaultURL := os.Getenv("CORE_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8086"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL,
		"Base URL of the core service API")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print raw JSON responses")

	configCmd.AddCommand(configGetCmd)
	pluginsCmd.AddCommand(pluginsListCmd, pluginsGetCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(statusCmd)
}
