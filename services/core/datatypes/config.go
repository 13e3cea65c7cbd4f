// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the wire and storage shapes shared by the core
// service handlers and the configuration store.
package datatypes

// Config categories accepted by the PATCH /api/config endpoint. Each maps
// to one section of the global configuration document.
const (
	CategoryIdentityProvider = "identity-provider"
	CategoryAuthentication   = "authentication"
	CategoryMessaging        = "messaging"
	CategoryDatabase         = "database"
	CategoryWeb              = "web"
)

// ValidLoggingLevels enumerates the accepted values for web.logging-level.
// Matching is case-insensitive; the stored value is always lowercase.
var ValidLoggingLevels = map[string]struct{}{
	"debug":    {},
	"info":     {},
	"warning":  {},
	"error":    {},
	"critical": {},
}

// GlobalDocument is the global configuration document. Each section is a
// flat mapping of setting key to scalar value. All five sections must be
// present in a loadable document; key-level gaps are tolerated.
type GlobalDocument struct {
	IdentityProvider map[string]any `yaml:"identity-provider" json:"identity-provider"`
	Authentication   map[string]any `yaml:"authentication" json:"authentication"`
	Messaging        map[string]any `yaml:"messaging" json:"messaging"`
	Database         map[string]any `yaml:"database" json:"database"`
	Web              map[string]any `yaml:"web" json:"web"`
}

// Section returns the section map for a category name, or nil when the
// category is unknown or the section is absent.
func (d *GlobalDocument) Section(category string) map[string]any {
	switch category {
	case CategoryIdentityProvider:
		return d.IdentityProvider
	case CategoryAuthentication:
		return d.Authentication
	case CategoryMessaging:
		return d.Messaging
	case CategoryDatabase:
		return d.Database
	case CategoryWeb:
		return d.Web
	default:
		return nil
	}
}

// ConfigPatch is the body of PATCH /api/config. Category selects the
// section to rewrite; the UI sends every field for that section, so all
// fields belonging to the selected category must be present. Fields for
// other categories are ignored.
type ConfigPatch struct {
	Category string `json:"category" binding:"required"`

	// identity-provider section
	TenantID *string `json:"tenant_id,omitempty"`

	// authentication section
	AuthAppID       *string `json:"auth_app_id,omitempty"`
	AuthAppSecret   *string `json:"auth_app_secret,omitempty"`
	AuthSalt        *string `json:"auth_salt,omitempty"`
	AuthRedirectURI *string `json:"auth_redirect_uri,omitempty"`
	AuthAdminGroup  *string `json:"auth_admin_group,omitempty"`

	// messaging section
	MessagingAppID      *string `json:"messaging_app_id,omitempty"`
	MessagingAppSecret  *string `json:"messaging_app_secret,omitempty"`
	MessagingSalt       *string `json:"messaging_salt,omitempty"`
	MessagingUserName   *string `json:"messaging_user_name,omitempty"`
	MessagingPublicKey  *string `json:"messaging_public_key,omitempty"`
	MessagingPrivateKey *string `json:"messaging_private_key,omitempty"`

	// database section
	DatabaseServer   *string `json:"database_server,omitempty"`
	DatabasePort     *string `json:"database_port,omitempty"`
	DatabaseName     *string `json:"database_name,omitempty"`
	DatabaseUsername *string `json:"database_username,omitempty"`
	DatabasePassword *string `json:"database_password,omitempty"`
	DatabaseSalt     *string `json:"database_salt,omitempty"`

	// web section
	WebLoggingLevel *string `json:"web_logging_level,omitempty"`
}
