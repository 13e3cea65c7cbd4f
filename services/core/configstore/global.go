// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package configstore

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/networkdirection/platform/pkg/lock"
	"github.com/networkdirection/platform/services/core/datatypes"
)

// sectionRequirements lists the required sections of the global document
// and the keys each section is expected to carry. A missing section is
// fatal; a missing key is logged only.
var sectionRequirements = map[string][]string{
	datatypes.CategoryIdentityProvider: {"tenant-id"},
	datatypes.CategoryAuthentication: {
		"app-id", "app-secret", "salt", "redirect-uri", "admin-group",
	},
	datatypes.CategoryMessaging: {
		"app-id", "app-secret", "salt", "user", "public-key", "private-key",
	},
	datatypes.CategoryDatabase: {
		"server", "port", "database", "username", "password", "salt",
	},
	datatypes.CategoryWeb: {"logging-level"},
}

// GlobalStore manages the global configuration document.
//
// The document is re-read from disk on every operation; mutations are
// serialized by an in-process mutex plus an advisory file lock and are
// rewritten synchronously.
type GlobalStore struct {
	path string
	mu   sync.Mutex
}

// NewGlobalStore returns a store backed by the YAML document at path.
func NewGlobalStore(path string) *GlobalStore {
	slog.Info("Initializing global config store", "file", path)
	return &GlobalStore{path: path}
}

// Load reads and validates the global configuration document.
//
// A missing file returns ErrNotFound. A missing required section returns
// ErrMissingSection: callers at startup treat that as fatal. Missing keys
// inside a present section and an invalid web.logging-level are logged
// at error level but do not fail the load.
func (s *GlobalStore) Load() (*datatypes.GlobalDocument, error) {
	var doc datatypes.GlobalDocument
	if err := loadDocument(s.path, &doc); err != nil {
		return nil, err
	}
	if err := validateSections(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update applies a category-scoped patch and synchronously rewrites the
// document. The patch must carry every field of the selected section;
// other sections are left untouched. An unknown category or a missing
// field fails before any write. web.logging-level values are case-folded
// to lowercase on write.
func (s *GlobalStore) Update(patch datatypes.ConfigPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guard, err := lock.Acquire(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer guard.Release()

	doc, err := s.Load()
	if err != nil {
		return err
	}

	if err := applyPatch(doc, patch); err != nil {
		slog.Error("Config update rejected", "category", patch.Category, "error", err)
		return err
	}

	if err := persistDocument(s.path, doc); err != nil {
		slog.Error("Failed to save global config", "error", err)
		return err
	}

	slog.Info("Global config updated", "category", patch.Category)
	return nil
}

// validateSections checks required sections and keys, and the logging
// level enum. Only a missing section is returned as an error.
func validateSections(doc *datatypes.GlobalDocument) error {
	for section, requiredKeys := range sectionRequirements {
		m := doc.Section(section)
		if m == nil {
			slog.Error("Missing section in configuration", "section", section)
			return fmt.Errorf("%w: '%s'", ErrMissingSection, section)
		}
		for _, key := range requiredKeys {
			if _, ok := m[key]; !ok {
				slog.Error("Missing key in configuration section",
					"section", section, "key", key)
			}
		}
	}

	level := strings.ToLower(fmt.Sprint(doc.Web["logging-level"]))
	if _, ok := datatypes.ValidLoggingLevels[level]; !ok {
		slog.Error("Invalid logging-level in configuration", "logging-level", level)
	}
	return nil
}

// applyPatch copies the patch fields for the selected category into the
// document, one field at a time. Every field of the section must be
// present in the patch.
func applyPatch(doc *datatypes.GlobalDocument, patch datatypes.ConfigPatch) error {
	type field struct {
		key   string
		value *string
	}

	var section map[string]any
	var fields []field

	switch patch.Category {
	case datatypes.CategoryIdentityProvider:
		section = doc.IdentityProvider
		fields = []field{{"tenant-id", patch.TenantID}}

	case datatypes.CategoryAuthentication:
		section = doc.Authentication
		fields = []field{
			{"app-id", patch.AuthAppID},
			{"app-secret", patch.AuthAppSecret},
			{"salt", patch.AuthSalt},
			{"redirect-uri", patch.AuthRedirectURI},
			{"admin-group", patch.AuthAdminGroup},
		}

	case datatypes.CategoryMessaging:
		section = doc.Messaging
		fields = []field{
			{"app-id", patch.MessagingAppID},
			{"app-secret", patch.MessagingAppSecret},
			{"salt", patch.MessagingSalt},
			{"user", patch.MessagingUserName},
			{"public-key", patch.MessagingPublicKey},
			{"private-key", patch.MessagingPrivateKey},
		}

	case datatypes.CategoryDatabase:
		section = doc.Database
		fields = []field{
			{"server", patch.DatabaseServer},
			{"port", patch.DatabasePort},
			{"database", patch.DatabaseName},
			{"username", patch.DatabaseUsername},
			{"password", patch.DatabasePassword},
			{"salt", patch.DatabaseSalt},
		}

	case datatypes.CategoryWeb:
		section = doc.Web
		if patch.WebLoggingLevel == nil {
			return fmt.Errorf("%w: web_logging_level", ErrMissingField)
		}
		level := strings.ToLower(*patch.WebLoggingLevel)
		if _, ok := datatypes.ValidLoggingLevels[level]; !ok {
			slog.Error("Invalid logging-level in patch", "logging-level", level)
		}
		section["logging-level"] = level
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, patch.Category)
	}

	for _, f := range fields {
		if f.value == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, f.key)
		}
	}
	for _, f := range fields {
		section[f.key] = *f.value
	}
	return nil
}
