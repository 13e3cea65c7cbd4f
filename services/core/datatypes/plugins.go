// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Webhook is a plugin's inbound callback configuration.
//
// SafeURL is derived from the plugin name and URL on every load and is
// never read from storage or accepted from callers.
type Webhook struct {
	URL       string   `yaml:"url" json:"url" binding:"required"`
	Secret    string   `yaml:"secret" json:"secret" binding:"required"`
	AuthType  string   `yaml:"auth-type" json:"auth-type"`
	AllowedIP []string `yaml:"allowed-ip" json:"allowed-ip" binding:"required,dive,ip_or_cidr"`
	SafeURL   string   `yaml:"-" json:"safe_url,omitempty"`
}

// Plugin is one external integration's webhook configuration and access
// policy. Name is the unique key across the collection.
type Plugin struct {
	Name        string  `yaml:"name" json:"name" binding:"required"`
	Description string  `yaml:"description" json:"description" binding:"required"`
	Webhook     Webhook `yaml:"webhook" json:"webhook" binding:"required"`
}

// PluginUpdate is the body of PATCH /api/plugins. PluginName locates the
// existing record (the name itself is mutable); the remaining fields are
// full replacement values.
type PluginUpdate struct {
	PluginName  string  `json:"plugin_name" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Webhook     Webhook `json:"webhook" binding:"required"`
}

// PluginDelete is the body of DELETE /api/plugins.
type PluginDelete struct {
	Name string `json:"name" binding:"required"`
}
