// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package configstore owns the durable configuration of the platform: the
// global configuration document and the plugin registry, both YAML files
// on local disk, plus the reload signal and audit log written on every
// successful mutation.
//
// # Storage model
//
// Durable storage is the source of truth. Both stores re-read their file
// at the start of every read or write operation; nothing is cached across
// requests, which sidesteps multi-process staleness at the cost of I/O
// per call. Every load→mutate→persist sequence runs under an in-process
// mutex plus an advisory file lock, and persistence is an atomic
// rename-on-write, so concurrent writers (including sibling processes)
// serialize instead of interleaving.
//
// A rewrite reformats the whole file; comment and ordering preservation
// is not guaranteed, and the global document is schema-typed: only the
// five known sections survive a rewrite, so any unrecognized top-level
// section is dropped on the first update.
package configstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// loadDocument reads and parses the YAML document at path into out.
// A missing file maps to ErrNotFound.
func loadDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: configuration file %s", ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// persistDocument rewrites the document at path atomically: marshal to a
// temp file in the same directory, then rename over the target. Readers
// never observe a half-written file.
func persistDocument(path string, doc any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshaling %s: %v", ErrPersist, path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", ErrPersist, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", ErrPersist, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %v", ErrPersist, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0640); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod %s: %v", ErrPersist, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %v", ErrPersist, path, err)
	}
	return nil
}
