// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"net/netip"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// IsIPOrCIDR reports whether s parses as a bare IP address or a CIDR
// network. Webhook allow-lists accept a mix of both in the same list.
func IsIPOrCIDR(s string) bool {
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	return false
}

// RegisterValidators installs the custom binding rules used by the request
// shapes in this package. Call once at startup (and from test setup)
// before binding any request that uses the "ip_or_cidr" tag.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Registration only fails for empty tag names.
		_ = v.RegisterValidation("ip_or_cidr", func(fl validator.FieldLevel) bool {
			return IsIPOrCIDR(fl.Field().String())
		})
	}
}
