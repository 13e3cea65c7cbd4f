// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

//go:build windows

package lock

import (
	"os"
)

// flockExclusive is a no-op on Windows.
//
// TODO: implement with golang.org/x/sys/windows.LockFileEx once a Windows
// multi-writer deployment exists. Current Windows installs run a single
// core process, so the in-process mutex in the store already serializes.
func flockExclusive(f *os.File) error {
	return nil
}

// flockUnlock is a no-op on Windows.
func flockUnlock(f *os.File) error {
	return nil
}
