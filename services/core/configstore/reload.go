// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package configstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadSignal is the process-wide side channel that tells long-running
// worker processes configuration changed. The sentinel file's
// modification time is the only payload; workers poll it.
type ReloadSignal struct {
	// Path is the sentinel file, e.g. /app/reload.txt.
	Path string
}

// Touch creates the sentinel if absent and bumps its modification time.
//
// Idempotent; concurrent touches are last-writer-wins. Failures are
// logged and swallowed: a missed reload signal degrades freshness but
// must never fail the configuration write that triggered it.
func (r ReloadSignal) Touch() {
	if r.Path == "" {
		return
	}

	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("Failed to update reload signal", "path", r.Path, "error", err)
		return
	}
	f.Close()

	now := time.Now()
	if err := os.Chtimes(r.Path, now, now); err != nil {
		slog.Error("Failed to update reload signal", "path", r.Path, "error", err)
	}
}

// Watch delivers a timestamp on the returned channel each time the
// sentinel changes, for in-process consumers that would otherwise poll.
// The channel closes when ctx is done. The sentinel is created if absent
// so the watch can be established before the first mutation.
func (r ReloadSignal) Watch(ctx context.Context) (<-chan time.Time, error) {
	if r.Path == "" {
		return nil, fmt.Errorf("reload signal path not configured")
	}

	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating reload signal %s: %w", r.Path, err)
	}
	f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", r.Path, err)
	}

	ch := make(chan time.Time, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Chtimes surfaces as a Chmod event on most platforms.
				if event.Op&(fsnotify.Write|fsnotify.Chmod|fsnotify.Create) == 0 {
					continue
				}
				select {
				case ch <- time.Now():
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Reload signal watch error", "error", err)
			}
		}
	}()
	return ch, nil
}
