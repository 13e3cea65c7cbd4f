// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP endpoints of the core service.
package handlers

import (
	"github.com/gin-gonic/gin"
)

// errorResponse writes the standard error envelope.
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"result":  "error",
		"message": message,
	})
}

// successResponse writes the standard success envelope. message and data
// are optional; data keys merge into the top-level object.
func successResponse(c *gin.Context, status int, message string, data gin.H) {
	resp := gin.H{"result": "success"}
	if message != "" {
		resp["message"] = message
	}
	for k, v := range data {
		resp[k] = v
	}
	c.JSON(status, resp)
}
