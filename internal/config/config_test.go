// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":10023", cfg.TCP.Addr)
	assert.Equal(t, ":10024", cfg.UDP.Addr)
	assert.Equal(t, "tcp", cfg.Client.Transport)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, map[string]string{"tcp": ":10023", "udp": ":10024"}, cfg.Listeners())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.toml")
	data := `
[tcp]
addr = "127.0.0.1:7000"

[ws]
addr = ":7001"

[mdcapnp]
addr = ":7002"

[metrics]
addr = "127.0.0.1:9100"

[client]
transport = "ws"
server = "10.0.0.1:7001"
timeout = "250ms"

[log]
level = "debug"
pretty = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("CALC_UDP_ADDR", "")
	t.Setenv("CALC_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.TCP.Addr)
	assert.Equal(t, ":7001", cfg.WS.Addr)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	assert.Equal(t, "ws", cfg.Client.Transport)
	assert.Equal(t, "10.0.0.1:7001", cfg.Client.Server)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, map[string]string{
		"tcp":     "127.0.0.1:7000",
		"ws":      ":7001",
		"mdcapnp": ":7002",
	}, cfg.Listeners())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "config load failed")
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.TCP.Addr = "no-port"
	cfg.Client.Timeout = 0
	cfg.Log.Level = "loud"
	err = Validate(cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "tcp addr")
	assert.ErrorContains(t, err, "timeout")
	assert.ErrorContains(t, err, "loud")
}
