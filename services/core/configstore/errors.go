// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package configstore

import "errors"

// Error taxonomy for the configuration store. Handlers map these onto
// HTTP statuses; everything else surfaces as an internal error.
var (
	// ErrNotFound marks a missing backing file or an unknown plugin name.
	ErrNotFound = errors.New("not found")

	// ErrMissingSection marks a required global-config section that is
	// absent. This is the one fatal validation failure: configuration
	// integrity is a precondition for serving any request.
	ErrMissingSection = errors.New("missing required section")

	// ErrMissingField marks a category patch that omits one of the
	// section's fields. Partial section updates are not supported.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownCategory marks a patch with an unrecognized category.
	ErrUnknownCategory = errors.New("unknown config category")

	// ErrDuplicateName marks a plugin registration that collides with an
	// existing plugin name.
	ErrDuplicateName = errors.New("plugin already exists")

	// ErrInvalidAddress marks an allowed-ip entry that is neither an IP
	// address nor a CIDR network.
	ErrInvalidAddress = errors.New("invalid allowed-ip entry")

	// ErrPersist marks a durable-storage write failure. In-memory state
	// may be ahead of storage until the next successful write.
	ErrPersist = errors.New("persist failed")
)
