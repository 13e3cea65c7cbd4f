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
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/networkdirection/platform/services/core/datatypes"
)

func runStatusCommand(cmd *cobra.Command, args []string) {
	path := "/api/containers"
	if len(args) == 1 {
		path += "?container=" + url.QueryEscape(args[0])
	}

	body, err := apiGet(path, nil)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if jsonOutput {
		printJSON(body)
		return
	}

	var envelope struct {
		Services []datatypes.ServiceStatus `json:"services"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Fatalf("Error decoding status report: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tVERSION\tSTATUS\tHEALTH")
	for _, svc := range envelope.Services {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			svc.Name, svc.Version, svc.Status, svc.Health)
	}
	w.Flush()
}
