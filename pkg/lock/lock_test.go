// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lock

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.lock")

	guard, err := Acquire(path)
	require.NoError(t, err)
	require.NotNil(t, guard)
	require.NoError(t, guard.Release())
}

func TestRelease_Idempotent(t *testing.T) {
	guard, err := Acquire(filepath.Join(t.TempDir(), "store.lock"))
	require.NoError(t, err)
	require.NoError(t, guard.Release())
	require.NoError(t, guard.Release())
}

func TestAcquire_SerializesCriticalSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.lock")

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard, err := Acquire(path)
			if err != nil {
				t.Error(err)
				return
			}
			defer guard.Release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "flock must admit one holder at a time")
}

func TestAcquire_BadDirectory(t *testing.T) {
	_, err := Acquire(filepath.Join(t.TempDir(), "missing", "deep", "store.lock"))
	assert.Error(t, err)
}
