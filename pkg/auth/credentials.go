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

// Package auth sources Alibaba Cloud access keys and signs ROA requests with them.
package auth

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"
)

// Environment variables read by EnvironmentCredentialProvider.
const (
	EnvAccessKeyID     = "ALIBABA_CLOUD_ACCESS_KEY_ID"
	EnvAccessKeySecret = "ALIBABA_CLOUD_ACCESS_KEY_SECRET"
	EnvSecurityToken   = "ALIBABA_CLOUD_SECURITY_TOKEN"
)

// ErrNoCredentials is returned when a provider has nothing to offer.
var ErrNoCredentials = errors.New("no credentials available")

// CredentialProvider defines how credentials are sourced
type CredentialProvider interface {
	GetCredentials(ctx context.Context) (*Credentials, error)
}

// Credentials is an access key pair with an optional STS token.
type Credentials struct {
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
}

func (c *Credentials) validate() error {
	if c == nil || c.AccessKeyID == "" || c.AccessKeySecret == "" {
		return ErrNoCredentials
	}
	return nil
}

// SecureCredentialStore keeps an AES-GCM encrypted copy of the provider's credentials
// in memory and refreshes it once the TTL has passed.
type SecureCredentialStore struct {
	mu          sync.RWMutex
	group       singleflight.Group
	clock       clock.Clock
	provider    CredentialProvider
	encryptKey  []byte
	credentials *encryptedCredentials
	lastRefresh time.Time
	ttl         time.Duration
}

type encryptedCredentials struct {
	accessKeyID     string
	accessKeySecret []byte
	securityToken   []byte
}

// NewSecureCredentialStore creates a new secure credential store
func NewSecureCredentialStore(provider CredentialProvider, ttl time.Duration) (*SecureCredentialStore, error) {
	return newSecureCredentialStore(provider, ttl, clock.RealClock{})
}

func newSecureCredentialStore(provider CredentialProvider, ttl time.Duration, clk clock.Clock) (*SecureCredentialStore, error) {
	key := make([]byte, 32) // AES-256
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating encryption key: %w", err)
	}

	return &SecureCredentialStore{
		clock:      clk,
		provider:   provider,
		encryptKey: key,
		ttl:        ttl,
	}, nil
}

// GetCredentials returns a decrypted copy, refreshing from the provider when stale.
// Concurrent refreshes share one provider call.
func (s *SecureCredentialStore) GetCredentials(ctx context.Context) (*Credentials, error) {
	s.mu.RLock()
	needsRefresh := s.credentials == nil || s.clock.Since(s.lastRefresh) > s.ttl
	s.mu.RUnlock()

	if needsRefresh {
		// The refresh is shared with other callers, so one caller's cancellation
		// must not fail it for the rest.
		if _, err, _ := s.group.Do("refresh", func() (interface{}, error) {
			return nil, s.refreshCredentials(context.WithoutCancel(ctx))
		}); err != nil {
			return nil, fmt.Errorf("refreshing credentials: %w", err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.credentials == nil {
		return nil, ErrNoCredentials
	}

	secret, err := s.decrypt(s.credentials.accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("decrypting access key secret: %w", err)
	}
	creds := &Credentials{
		AccessKeyID:     s.credentials.accessKeyID,
		AccessKeySecret: string(secret),
	}
	if s.credentials.securityToken != nil {
		token, err := s.decrypt(s.credentials.securityToken)
		if err != nil {
			return nil, fmt.Errorf("decrypting security token: %w", err)
		}
		creds.SecurityToken = string(token)
	}
	return creds, nil
}

// RotateCredentials forces a credential refresh
func (s *SecureCredentialStore) RotateCredentials(ctx context.Context) error {
	return s.refreshCredentials(ctx)
}

// ClearCredentials removes stored credentials from memory
func (s *SecureCredentialStore) ClearCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials.zero()
	s.credentials = nil
	s.lastRefresh = time.Time{}
}

func (e *encryptedCredentials) zero() {
	if e == nil {
		return
	}
	clear(e.accessKeySecret)
	clear(e.securityToken)
}

func (s *SecureCredentialStore) refreshCredentials(ctx context.Context) error {
	creds, err := s.provider.GetCredentials(ctx)
	if err != nil {
		return fmt.Errorf("getting credentials from provider: %w", err)
	}
	if err := creds.validate(); err != nil {
		return err
	}

	encSecret, err := s.encrypt([]byte(creds.AccessKeySecret))
	if err != nil {
		return fmt.Errorf("encrypting access key secret: %w", err)
	}
	var encToken []byte
	if creds.SecurityToken != "" {
		if encToken, err = s.encrypt([]byte(creds.SecurityToken)); err != nil {
			return fmt.Errorf("encrypting security token: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials.zero()
	s.credentials = &encryptedCredentials{
		accessKeyID:     creds.AccessKeyID,
		accessKeySecret: encSecret,
		securityToken:   encToken,
	}
	s.lastRefresh = s.clock.Now()
	return nil
}

func (s *SecureCredentialStore) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *SecureCredentialStore) decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// EnvironmentCredentialProvider sources credentials from environment variables
type EnvironmentCredentialProvider struct{}

func (e *EnvironmentCredentialProvider) GetCredentials(_ context.Context) (*Credentials, error) {
	id := os.Getenv(EnvAccessKeyID)
	secret := os.Getenv(EnvAccessKeySecret)
	if id == "" || secret == "" {
		return nil, fmt.Errorf("%w: %s and %s must both be set", ErrNoCredentials, EnvAccessKeyID, EnvAccessKeySecret)
	}
	return &Credentials{
		AccessKeyID:     id,
		AccessKeySecret: secret,
		SecurityToken:   os.Getenv(EnvSecurityToken),
	}, nil
}

// StaticCredentialProvider returns fixed credentials, typically from the config file.
type StaticCredentialProvider struct {
	Credentials Credentials
}

func (p *StaticCredentialProvider) GetCredentials(_ context.Context) (*Credentials, error) {
	if err := p.Credentials.validate(); err != nil {
		return nil, fmt.Errorf("static credentials: %w", err)
	}
	creds := p.Credentials
	return &creds, nil
}

// ChainCredentialProvider tries each provider in order and returns the first success.
type ChainCredentialProvider struct {
	Providers []CredentialProvider
}

// NewChainCredentialProvider skips nil providers.
func NewChainCredentialProvider(providers ...CredentialProvider) *ChainCredentialProvider {
	chain := &ChainCredentialProvider{}
	for _, p := range providers {
		if p != nil {
			chain.Providers = append(chain.Providers, p)
		}
	}
	return chain
}

func (c *ChainCredentialProvider) GetCredentials(ctx context.Context) (*Credentials, error) {
	var errs error
	for _, p := range c.Providers {
		creds, err := p.GetCredentials(ctx)
		if err == nil {
			return creds, nil
		}
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		return nil, ErrNoCredentials
	}
	return nil, fmt.Errorf("no provider in chain returned credentials: %w", errs)
}
