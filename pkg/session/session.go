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

// Package session ties together configuration, credentials, the service
// clients and the resource providers.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfeifferj/pai-go-sdk/pkg/auth"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/config"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/oss"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/algorithm"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/pipelinerun"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/trainingjob"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/workspace"
)

// DefaultCredentialTTL is how long resolved credentials are reused.
const DefaultCredentialTTL = 15 * time.Minute

type sessionKey struct{}

type options struct {
	credentials   auth.CredentialProvider
	credentialTTL time.Duration
	httpOpts      []httpclient.Option
	apis          *providers.APIs
	lifecycle     []lifecycle.Option
	bucket        oss.Bucket
}

// Option configures a Session
type Option func(*options)

// WithCredentialProvider replaces the config-then-environment credential chain.
func WithCredentialProvider(p auth.CredentialProvider) Option {
	return func(o *options) { o.credentials = p }
}

// WithCredentialTTL sets how long credentials are cached.
func WithCredentialTTL(ttl time.Duration) Option {
	return func(o *options) { o.credentialTTL = ttl }
}

// WithHTTPOptions passes options to every service HTTP client.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(o *options) { o.httpOpts = append(o.httpOpts, opts...) }
}

// WithAPIs makes the session use apis instead of the HTTP service clients.
func WithAPIs(apis providers.APIs) Option {
	return func(o *options) { o.apis = &apis }
}

// WithProviderOptions adds options applied to every provider.
func WithProviderOptions(opts ...lifecycle.Option) Option {
	return func(o *options) { o.lifecycle = append(o.lifecycle, opts...) }
}

// WithOSSBucket makes OSS use bucket instead of opening the configured one.
func WithOSSBucket(bucket oss.Bucket) Option {
	return func(o *options) { o.bucket = bucket }
}

// Session is the entry point of the SDK for one region and workspace.
type Session struct {
	cfg         config.Config
	credentials auth.CredentialProvider
	store       *auth.SecureCredentialStore
	client      *client.Client
	factory     *providers.ProviderFactory
	bucket      oss.Bucket
	logger      *logging.Logger

	ossMu     sync.Mutex
	ossClient *oss.Client
}

// New creates a session from cfg. Credentials come from cfg when it has them and
// from the environment otherwise.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config", client.ErrMissingArgument)
	}
	if cfg.RegionID == "" {
		return nil, fmt.Errorf("%w: region (set %s or %s)", client.ErrMissingArgument,
			config.KeyRegionID, config.EnvVar(config.KeyRegionID))
	}
	o := options{credentialTTL: DefaultCredentialTTL}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{cfg: *cfg, bucket: o.bucket, logger: logging.ClientLogger().WithName("session")}

	provider := o.credentials
	if provider == nil {
		var static auth.CredentialProvider
		if cfg.AccessKeyID != "" {
			static = &auth.StaticCredentialProvider{Credentials: auth.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				AccessKeySecret: cfg.AccessKeySecret,
				SecurityToken:   cfg.SecurityToken,
			}}
		}
		provider = auth.NewChainCredentialProvider(static, &auth.EnvironmentCredentialProvider{})
	}
	store, err := auth.NewSecureCredentialStore(provider, o.credentialTTL)
	if err != nil {
		return nil, fmt.Errorf("creating credential store: %w", err)
	}
	s.store = store
	s.credentials = store

	apis := o.apis
	if apis == nil {
		c, err := client.NewClient(cfg.RegionID, auth.NewROASigner(store), o.httpOpts...)
		if err != nil {
			return nil, err
		}
		built, err := providers.APIsFromClient(c)
		if err != nil {
			return nil, err
		}
		s.client = c
		apis = &built
	}

	providerOpts := o.lifecycle
	if cfg.WorkspaceID != "" {
		providerOpts = append([]lifecycle.Option{lifecycle.WithWorkspaceID(cfg.WorkspaceID)}, providerOpts...)
	}
	s.factory, err = providers.NewProviderFactory(*apis, cfg.RegionID, providerOpts...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created session", "region", cfg.RegionID, "workspaceID", cfg.WorkspaceID)
	return s, nil
}

// Default loads the config file named by $PAI_CONFIG_FILE or ~/.pai/config.json
// and creates a session from it.
func Default(ctx context.Context, opts ...Option) (*Session, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, opts...)
}

// Config returns a copy of the session settings.
func (s *Session) Config() config.Config { return s.cfg }

// Region returns the session region.
func (s *Session) Region() string { return s.cfg.RegionID }

// WorkspaceID returns the default workspace, which may be empty.
func (s *Session) WorkspaceID() string { return s.cfg.WorkspaceID }

// Client returns the HTTP service client; it is nil for sessions built WithAPIs.
func (s *Session) Client() *client.Client { return s.client }

// Credentials returns the current credentials.
func (s *Session) Credentials(ctx context.Context) (*auth.Credentials, error) {
	return s.credentials.GetCredentials(ctx)
}

// Jobs returns the pipeline run provider.
func (s *Session) Jobs() (*pipelinerun.Provider, error) { return s.factory.PipelineRuns() }

// DLC returns the DLC job provider.
func (s *Session) DLC() (*dlc.Provider, error) { return s.factory.DLC() }

// TrainingJobs returns the training job provider.
func (s *Session) TrainingJobs() (*trainingjob.Provider, error) { return s.factory.TrainingJobs() }

// Algorithms returns the algorithm provider.
func (s *Session) Algorithms() (*algorithm.Provider, error) { return s.factory.Algorithms() }

// Services returns the EAS service provider.
func (s *Session) Services() (*eas.Provider, error) { return s.factory.Services() }

// Instances returns the DSW instance provider.
func (s *Session) Instances() (*dsw.Provider, error) { return s.factory.Instances() }

// Workspace returns the AIWorkspace provider.
func (s *Session) Workspace() (*workspace.Provider, error) { return s.factory.Workspace() }

// Images returns the official image resolver.
func (s *Session) Images() (*workspace.ImageResolver, error) { return s.factory.Images() }

// OSS returns a client for the configured bucket, built on first use.
func (s *Session) OSS(ctx context.Context) (*oss.Client, error) {
	s.ossMu.Lock()
	defer s.ossMu.Unlock()
	if s.ossClient != nil {
		return s.ossClient, nil
	}
	if s.cfg.OSSBucketName == "" || s.cfg.OSSEndpoint == "" {
		return nil, fmt.Errorf("%w: %s and %s", client.ErrMissingArgument, config.KeyOSSBucketName, config.KeyOSSEndpoint)
	}
	if s.bucket != nil {
		s.ossClient = oss.NewClientWithBucket(s.bucket, s.cfg.OSSBucketName, s.cfg.OSSEndpoint)
		return s.ossClient, nil
	}
	creds, err := s.credentials.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := oss.NewClient(s.cfg.OSSEndpoint, s.cfg.OSSBucketName, creds)
	if err != nil {
		return nil, err
	}
	s.ossClient = c
	return c, nil
}

// Close releases cached credentials and background resources.
func (s *Session) Close() {
	s.factory.Close()
	s.store.ClearCredentials()
}

// ToContext returns a new context carrying s.
func ToContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
