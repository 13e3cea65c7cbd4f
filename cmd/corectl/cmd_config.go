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
	"sort"

	"github.com/spf13/cobra"
)

func runConfigGet(cmd *cobra.Command, args []string) {
	body, err := apiGet("/api/config", nil)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if jsonOutput {
		printJSON(body)
		return
	}

	var envelope struct {
		Config map[string]map[string]any `json:"config"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Fatalf("Error decoding configuration: %v", err)
	}

	sections := make([]string, 0, len(envelope.Config))
	for name := range envelope.Config {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	for _, section := range sections {
		fmt.Printf("[%s]\n", section)
		keys := make([]string, 0, len(envelope.Config[section]))
		for key := range envelope.Config[section] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("  %s: %v\n", key, envelope.Config[section][key])
		}
	}
}
