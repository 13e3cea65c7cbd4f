// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkdirection/platform/services/core/configstore"
	"github.com/networkdirection/platform/services/core/datatypes"
	"github.com/networkdirection/platform/services/core/observability"
)

type pluginTestEnv struct {
	router *gin.Engine
	store  *configstore.PluginStore
}

func newPluginTestEnv(t *testing.T) *pluginTestEnv {
	t.Helper()
	dir := t.TempDir()
	store := configstore.NewPluginStore(filepath.Join(dir, "plugins.yaml"), nil)
	reload := configstore.ReloadSignal{Path: filepath.Join(dir, "reload.txt")}
	metrics := observability.NewCoreMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.GET("/api/plugins", GetPlugins(store))
	router.POST("/api/plugins", RegisterPlugin(store, reload, metrics))
	router.PATCH("/api/plugins", UpdatePlugin(store, reload, metrics))
	router.DELETE("/api/plugins", DeletePlugin(store, reload, metrics))
	return &pluginTestEnv{router: router, store: store}
}

func (env *pluginTestEnv) do(t *testing.T, method, path string, body any,
	headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func collectorBody() gin.H {
	return gin.H{
		"name":        "Collector",
		"description": "A test plugin",
		"webhook": gin.H{
			"url":        "hooks/incoming",
			"secret":     "s3cret",
			"auth-type":  "hmac",
			"allowed-ip": []string{"192.168.1.10", "10.0.0.0/8"},
		},
	}
}

func TestGetPlugins_MissingHeader(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/plugins", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing X-Plugin-Name header")
}

func TestGetPlugins_All(t *testing.T) {
	env := newPluginTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/plugins", nil,
		map[string]string{"X-Plugin-Name": "all"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result  string             `json:"result"`
		Plugins []datatypes.Plugin `json:"plugins"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Result)
	require.Len(t, resp.Plugins, 1)
	assert.Equal(t, "Collector", resp.Plugins[0].Name)
	assert.Equal(t, "/plugin/collector/hooks/incoming", resp.Plugins[0].Webhook.SafeURL)
}

func TestGetPlugins_Single(t *testing.T) {
	env := newPluginTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/plugins", nil,
		map[string]string{"X-Plugin-Name": "Collector"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Plugin datatypes.Plugin `json:"plugin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Collector", resp.Plugin.Name)
}

func TestGetPlugins_Unknown(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/plugins", nil,
		map[string]string{"X-Plugin-Name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Plugin Ghost not found")
}

func TestRegisterPlugin(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Plugin added successfully")

	got, err := env.store.Get("Collector")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got.Webhook.Secret)
}

func TestRegisterPlugin_NoBody(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/plugins", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No data provided")
}

func TestRegisterPlugin_InvalidAllowedIP(t *testing.T) {
	env := newPluginTestEnv(t)

	body := collectorBody()
	body["webhook"].(gin.H)["allowed-ip"] = []string{"not-an-ip"}
	w := env.do(t, http.MethodPost, "/api/plugins", body, nil)

	// The binding rule rejects it before the store is touched, and the
	// response says the operation failed rather than claiming no data
	// was sent.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to add plugin")
	assert.NotContains(t, w.Body.String(), "No data provided")

	plugins, err := env.store.Load()
	require.NoError(t, err)
	assert.Empty(t, plugins)
}

func TestUpdatePlugin_InvalidAllowedIPBinding(t *testing.T) {
	env := newPluginTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, "/api/plugins", gin.H{
		"plugin_name": "Collector",
		"name":        "Collector",
		"description": "still here",
		"webhook": gin.H{
			"url":        "hooks/incoming",
			"secret":     "s3cret",
			"allowed-ip": []string{"not-an-ip"},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to update plugin configuration")
	assert.NotContains(t, w.Body.String(), "No data provided")

	// Record untouched.
	got, err := env.store.Get("Collector")
	require.NoError(t, err)
	assert.Equal(t, "A test plugin", got.Description)
}

func TestRegisterPlugin_Duplicate(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to add plugin")
}

func TestUpdatePlugin(t *testing.T) {
	env := newPluginTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, "/api/plugins", gin.H{
		"plugin_name": "Collector",
		"name":        "Collector v2",
		"description": "Renamed",
		"webhook": gin.H{
			"url":        "hooks/v2",
			"secret":     "newsecret",
			"auth-type":  "basic",
			"allowed-ip": []string{"172.16.0.0/12"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Plugin updated successfully")

	got, err := env.store.Get("Collector v2")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Description)
}

func TestUpdatePlugin_Unknown(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodPatch, "/api/plugins", gin.H{
		"plugin_name": "Ghost",
		"name":        "Ghost",
		"description": "x",
		"webhook": gin.H{
			"url":        "hooks/x",
			"secret":     "s",
			"allowed-ip": []string{"10.0.0.1"},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to update plugin configuration")
}

func TestDeletePlugin(t *testing.T) {
	env := newPluginTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/plugins", collectorBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/plugins", gin.H{"name": "Collector"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Plugin deleted successfully")

	plugins, err := env.store.Load()
	require.NoError(t, err)
	assert.Empty(t, plugins)
}

func TestDeletePlugin_MissingName(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodDelete, "/api/plugins", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing plugin name in request body")
}

func TestDeletePlugin_Unknown(t *testing.T) {
	env := newPluginTestEnv(t)

	w := env.do(t, http.MethodDelete, "/api/plugins", gin.H{"name": "Ghost"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Plugin not found or could not be deleted")
}
