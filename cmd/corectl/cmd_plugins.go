// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/networkdirection/platform/services/core/datatypes"
)

func runPluginsList(cmd *cobra.Command, args []string) {
	body, err := apiGet("/api/plugins", map[string]string{"X-Plugin-Name": "all"})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if jsonOutput {
		printJSON(body)
		return
	}

	var envelope struct {
		Plugins []datatypes.Plugin `json:"plugins"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Fatalf("Error decoding plugins: %v", err)
	}
	if len(envelope.Plugins) == 0 {
		fmt.Println("No plugins registered.")
		return
	}
	for _, p := range envelope.Plugins {
		printPlugin(p)
	}
}

func runPluginsGet(cmd *cobra.Command, args []string) {
	body, err := apiGet("/api/plugins", map[string]string{"X-Plugin-Name": args[0]})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if jsonOutput {
		printJSON(body)
		return
	}

	var envelope struct {
		Plugin datatypes.Plugin `json:"plugin"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Fatalf("Error decoding plugin: %v", err)
	}
	printPlugin(envelope.Plugin)
}

func printPlugin(p datatypes.Plugin) {
	fmt.Printf("%s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("  description: %s\n", p.Description)
	}
	fmt.Printf("  webhook: %s (auth: %s, allowed: %s)\n",
		p.Webhook.URL, p.Webhook.AuthType, strings.Join(p.Webhook.AllowedIP, ", "))
}
