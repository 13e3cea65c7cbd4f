// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package configstore

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/networkdirection/platform/pkg/lock"
	"github.com/networkdirection/platform/services/core/datatypes"
)

// PluginStore manages the ordered plugin collection.
//
// Like GlobalStore it re-reads its file on every operation and serializes
// mutations with a mutex plus advisory file lock. Every successful
// mutation is persisted and appended to the audit log.
type PluginStore struct {
	path  string
	audit *AuditLog
	mu    sync.Mutex
}

// NewPluginStore returns a store backed by the YAML list at path.
// audit may be nil, in which case mutations are not audit-logged.
func NewPluginStore(path string, audit *AuditLog) *PluginStore {
	return &PluginStore{path: path, audit: audit}
}

// rawWebhook and rawPlugin use pointer fields so that an absent key is
// distinguishable from an empty value during load-time validation.
type rawWebhook struct {
	URL       *string   `yaml:"url"`
	Secret    *string   `yaml:"secret"`
	AuthType  *string   `yaml:"auth-type"`
	AllowedIP *[]string `yaml:"allowed-ip"`
}

type rawPlugin struct {
	Name        *string     `yaml:"name"`
	Description *string     `yaml:"description"`
	Webhook     *rawWebhook `yaml:"webhook"`
}

// Load reads the full plugin list, drops records missing required fields
// (with a warning), and recomputes every surviving record's safe URL.
// A stored safe_url is never trusted. A missing file is an empty
// collection, not an error, so the very first registration can succeed.
func (s *PluginStore) Load() ([]datatypes.Plugin, error) {
	var raw []rawPlugin
	if err := loadDocument(s.path, &raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []datatypes.Plugin{}, nil
		}
		return nil, err
	}

	plugins := make([]datatypes.Plugin, 0, len(raw))
	for idx, entry := range raw {
		p, ok := validateRecord(idx, entry)
		if !ok {
			continue
		}
		p.Webhook.SafeURL = SafeURL(p.Name, p.Webhook.URL)
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// Get returns the plugin named name, or ErrNotFound.
func (s *PluginStore) Get(name string) (datatypes.Plugin, error) {
	plugins, err := s.Load()
	if err != nil {
		return datatypes.Plugin{}, err
	}
	for _, p := range plugins {
		if p.Name == name {
			return p, nil
		}
	}
	return datatypes.Plugin{}, fmt.Errorf("%w: plugin %q", ErrNotFound, name)
}

// Register appends a new plugin. It fails with ErrDuplicateName when the
// name is already present and ErrInvalidAddress when any allowed-ip entry
// is neither an IP address nor a CIDR network; neither failure writes.
func (s *PluginStore) Register(p datatypes.Plugin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guard, err := lock.Acquire(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer guard.Release()

	slog.Info("Attempting to register plugin", "plugin", p.Name)

	plugins, err := s.Load()
	if err != nil {
		return err
	}

	for _, existing := range plugins {
		if existing.Name == p.Name {
			slog.Error("Plugin already exists", "plugin", p.Name)
			return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
	}

	if err := ValidateAllowedIP(p.Webhook.AllowedIP); err != nil {
		slog.Error("Invalid addresses in allowed-ip",
			"plugin", p.Name, "allowed-ip", p.Webhook.AllowedIP)
		return err
	}

	p.Webhook.SafeURL = ""
	plugins = append(plugins, p)

	if err := persistDocument(s.path, plugins); err != nil {
		slog.Error("Failed to save plugin config", "error", err)
		return err
	}

	s.audit.Record(fmt.Sprintf("Plugin '%s' registered successfully.", p.Name))
	return nil
}

// Update overwrites the plugin identified by u.PluginName with full
// replacement values. The incoming allowed-ip list is validated before
// the record is touched, so a validation failure leaves both memory and
// storage unchanged.
func (s *PluginStore) Update(u datatypes.PluginUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guard, err := lock.Acquire(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer guard.Release()

	slog.Info("Attempting to update plugin", "plugin", u.PluginName)

	plugins, err := s.Load()
	if err != nil {
		return err
	}

	idx := -1
	for i, p := range plugins {
		if p.Name == u.PluginName {
			idx = i
			break
		}
	}
	if idx == -1 {
		slog.Error("Cannot update plugin, entry not found", "plugin", u.PluginName)
		return fmt.Errorf("%w: plugin %q", ErrNotFound, u.PluginName)
	}

	if err := ValidateAllowedIP(u.Webhook.AllowedIP); err != nil {
		slog.Error("Invalid addresses in allowed-ip",
			"plugin", u.PluginName, "allowed-ip", u.Webhook.AllowedIP)
		return err
	}

	plugins[idx] = datatypes.Plugin{
		Name:        u.Name,
		Description: u.Description,
		Webhook: datatypes.Webhook{
			URL:       u.Webhook.URL,
			Secret:    u.Webhook.Secret,
			AuthType:  u.Webhook.AuthType,
			AllowedIP: u.Webhook.AllowedIP,
		},
	}

	if err := persistDocument(s.path, plugins); err != nil {
		slog.Error("Failed to save plugin config", "error", err)
		return err
	}

	s.audit.Record(fmt.Sprintf("Plugin '%s' updated successfully.", u.Name))
	return nil
}

// Delete removes the plugin named name, or fails with ErrNotFound.
func (s *PluginStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guard, err := lock.Acquire(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer guard.Release()

	slog.Warn("Attempting to delete plugin", "plugin", name)

	plugins, err := s.Load()
	if err != nil {
		return err
	}

	idx := -1
	for i, p := range plugins {
		if p.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		slog.Error("Cannot delete plugin, entry not found", "plugin", name)
		return fmt.Errorf("%w: plugin %q", ErrNotFound, name)
	}

	plugins = append(plugins[:idx], plugins[idx+1:]...)

	if err := persistDocument(s.path, plugins); err != nil {
		slog.Error("Failed to save plugin config", "error", err)
		return err
	}

	s.audit.Record(fmt.Sprintf("Plugin '%s' deleted successfully.", name))
	return nil
}

// ValidateAllowedIP checks every entry against the address-or-network
// rule. Mixed lists of bare addresses and CIDR networks are accepted.
func ValidateAllowedIP(entries []string) error {
	for _, entry := range entries {
		if !datatypes.IsIPOrCIDR(entry) {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, entry)
		}
	}
	return nil
}

// SafeURL derives the unique, URL-safe callback route for a plugin from
// its name and webhook URL. Derivation is deterministic: lowercase,
// spaces to underscores, '#' stripped, then percent-encoded.
func SafeURL(name, webhookURL string) string {
	s := strings.ToLower("/plugin/" + name + "/" + webhookURL)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "#", "")
	return (&url.URL{Path: s}).EscapedPath()
}

// validateRecord checks one stored record for the required fields and
// converts it. Invalid records are dropped, not hard-failed, so one bad
// entry cannot take the whole registry down.
func validateRecord(idx int, entry rawPlugin) (datatypes.Plugin, bool) {
	name := "?"
	if entry.Name != nil {
		name = *entry.Name
	}

	valid := true
	if entry.Name == nil {
		slog.Error("Plugin missing required field", "index", idx, "field", "name")
		valid = false
	}
	if entry.Description == nil {
		slog.Error("Plugin missing required field", "index", idx, "field", "description")
		valid = false
	}
	if entry.Webhook == nil {
		slog.Error("Plugin missing required field", "index", idx, "field", "webhook")
		valid = false
	} else {
		if entry.Webhook.URL == nil {
			slog.Error("Plugin missing webhook field", "plugin", name, "field", "url")
			valid = false
		}
		if entry.Webhook.Secret == nil {
			slog.Error("Plugin missing webhook field", "plugin", name, "field", "secret")
			valid = false
		}
		if entry.Webhook.AllowedIP == nil {
			slog.Error("Plugin missing webhook field", "plugin", name, "field", "allowed-ip")
			valid = false
		}
	}

	if !valid {
		slog.Warn("Removing invalid plugin entry", "plugin", name)
		return datatypes.Plugin{}, false
	}

	p := datatypes.Plugin{
		Name:        *entry.Name,
		Description: *entry.Description,
		Webhook: datatypes.Webhook{
			URL:       *entry.Webhook.URL,
			Secret:    *entry.Webhook.Secret,
			AllowedIP: *entry.Webhook.AllowedIP,
		},
	}
	if entry.Webhook.AuthType != nil {
		p.Webhook.AuthType = *entry.Webhook.AuthType
	}
	return p, true
}
