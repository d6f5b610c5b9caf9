// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads the settings of the calculator binaries from an
// optional config file and CALC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/matheusd/calcproto/internal/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, with dots in keys
// replaced by underscores: CALC_TCP_ADDR overrides tcp.addr.
const EnvPrefix = "calc"

// Listener is the bind address of one server transport. An empty address
// (including an empty CALC_*_ADDR variable) disables the transport.
type Listener struct {
	Addr string `mapstructure:"addr"`
}

// Client holds the client's defaults.
type Client struct {
	Transport string        `mapstructure:"transport"`
	Server    string        `mapstructure:"server"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Config is the full configuration.
type Config struct {
	TCP     Listener       `mapstructure:"tcp"`
	UDP     Listener       `mapstructure:"udp"`
	WS      Listener       `mapstructure:"ws"`
	HTTP    Listener       `mapstructure:"http"`
	GRPC    Listener       `mapstructure:"grpc"`
	Capnp   Listener       `mapstructure:"capnp"`
	MDCapnp Listener       `mapstructure:"mdcapnp"`
	Metrics Listener       `mapstructure:"metrics"`
	Client  Client         `mapstructure:"client"`
	Log     logging.Config `mapstructure:"log"`
}

// Listeners maps transport names to their configured bind addresses,
// skipping disabled ones.
func (cfg Config) Listeners() map[string]string {
	res := make(map[string]string, 7)
	for name, l := range map[string]Listener{
		"tcp":     cfg.TCP,
		"udp":     cfg.UDP,
		"ws":      cfg.WS,
		"http1":   cfg.HTTP,
		"grpc":    cfg.GRPC,
		"capnp":   cfg.Capnp,
		"mdcapnp": cfg.MDCapnp,
	} {
		if addr := strings.TrimSpace(l.Addr); addr != "" {
			res[name] = addr
		}
	}
	return res
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tcp.addr", ":10023")
	v.SetDefault("udp.addr", ":10024")
	v.SetDefault("ws.addr", "")
	v.SetDefault("http.addr", "")
	v.SetDefault("grpc.addr", "")
	v.SetDefault("capnp.addr", "")
	v.SetDefault("mdcapnp.addr", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("client.transport", "tcp")
	v.SetDefault("client.server", "127.0.0.1:10023")
	v.SetDefault("client.timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("log.nocolor", false)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment are used. Environment variables take
// precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks addresses and the log level.
func Validate(cfg Config) error {
	var errs []error
	for name, addr := range cfg.Listeners() {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Errorf("%s addr %q: %w", name, addr, err))
		}
	}
	if addr := cfg.Metrics.Addr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Errorf("metrics addr %q: %w", addr, err))
		}
	}
	if _, _, err := net.SplitHostPort(cfg.Client.Server); err != nil {
		errs = append(errs, fmt.Errorf("client server %q: %w", cfg.Client.Server, err))
	}
	if cfg.Client.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client timeout must be positive, got %s", cfg.Client.Timeout))
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
