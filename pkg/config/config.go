/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads and persists the SDK settings file, ~/.pai/config.json,
// with environment variable overrides.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// Setting keys, as written in the config file.
const (
	KeyAccessKeyID     = "access_key_id"
	KeyAccessKeySecret = "access_key_secret"
	KeySecurityToken   = "security_token"
	KeyRegionID        = "region_id"
	KeyWorkspaceID     = "workspace_id"
	KeyOSSBucketName   = "oss_bucket_name"
	KeyOSSEndpoint     = "oss_endpoint"
)

// EnvConfigFile overrides the config file location.
const EnvConfigFile = "PAI_CONFIG_FILE"

// envVars maps each setting to the environment variable that overrides it.
var envVars = map[string]string{
	KeyAccessKeyID:     "ALIBABA_CLOUD_ACCESS_KEY_ID",
	KeyAccessKeySecret: "ALIBABA_CLOUD_ACCESS_KEY_SECRET",
	KeySecurityToken:   "ALIBABA_CLOUD_SECURITY_TOKEN",
	KeyRegionID:        "ALIBABA_CLOUD_REGION_ID",
	KeyWorkspaceID:     "PAI_WORKSPACE_ID",
	KeyOSSBucketName:   "PAI_OSS_BUCKET_NAME",
	KeyOSSEndpoint:     "PAI_OSS_ENDPOINT",
}

// ErrUnknownKey is returned by Set for keys the config file does not have.
var ErrUnknownKey = errors.New("unknown config key")

type configKey struct{}

// Config holds the resolved SDK settings
type Config struct {
	AccessKeyID     string `json:"access_key_id,omitempty" mapstructure:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret,omitempty" mapstructure:"access_key_secret"`
	SecurityToken   string `json:"security_token,omitempty" mapstructure:"security_token"`
	RegionID        string `json:"region_id,omitempty" mapstructure:"region_id"`
	WorkspaceID     string `json:"workspace_id,omitempty" mapstructure:"workspace_id"`
	OSSBucketName   string `json:"oss_bucket_name,omitempty" mapstructure:"oss_bucket_name"`
	OSSEndpoint     string `json:"oss_endpoint,omitempty" mapstructure:"oss_endpoint"`
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return envVars[key]
}

// Keys returns every setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultPath returns $PAI_CONFIG_FILE, or ~/.pai/config.json.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".pai", "config.json"), nil
}

// Load reads the config file at path and applies environment overrides. A
// missing file is not an error; path "" means DefaultPath.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile reads the config file at path without environment overrides.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigType("json")
	if withEnv {
		for key, env := range envVars {
			if err := v.BindEnv(key, env); err != nil {
				return nil, err
			}
		}
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as JSON, readable only by the owner.
func Save(path string, cfg *Config) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		KeyAccessKeyID:     &c.AccessKeyID,
		KeyAccessKeySecret: &c.AccessKeySecret,
		KeySecurityToken:   &c.SecurityToken,
		KeyRegionID:        &c.RegionID,
		KeyWorkspaceID:     &c.WorkspaceID,
		KeyOSSBucketName:   &c.OSSBucketName,
		KeyOSSEndpoint:     &c.OSSEndpoint,
	}
}

// Get returns the value of key.
func (c *Config) Get(key string) (string, error) {
	f, ok := c.fields()[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return *f, nil
}

// Set assigns value to key.
func (c *Config) Set(key, value string) error {
	f, ok := c.fields()[key]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	*f = value
	return nil
}

// Redacted returns a copy safe to print: secrets keep only their last four characters.
func (c *Config) Redacted() Config {
	out := *c
	out.AccessKeySecret = redact(out.AccessKeySecret)
	out.SecurityToken = redact(out.SecurityToken)
	return out
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// ToContext returns a new context carrying cfg.
func ToContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored in ctx, or an empty one.
func FromContext(ctx context.Context) *Config {
	if v, ok := ctx.Value(configKey{}).(*Config); ok {
		return v
	}
	return &Config{}
}
