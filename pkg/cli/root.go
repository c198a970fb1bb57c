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

// Package cli implements the pai command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pfeifferj/pai-go-sdk/pkg/config"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/session"
)

// SessionFunc builds the session used by resource commands.
type SessionFunc func(ctx context.Context, cfg *config.Config) (*session.Session, error)

// Options configure the root command.
type Options struct {
	Out    io.Writer
	ErrOut io.Writer
	// NewSession defaults to session.New.
	NewSession SessionFunc
}

type globalFlags struct {
	configPath  string
	region      string
	workspaceID string
	logLevel    string
	output      string
}

func (f *globalFlags) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.configPath, "config", "", fmt.Sprintf("config file (default $%s or ~/.pai/config.json)", config.EnvConfigFile))
	flags.StringVar(&f.region, "region", "", "region ID, overrides the config file")
	flags.StringVar(&f.workspaceID, "workspace-id", "", "workspace ID, overrides the config file")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVarP(&f.output, "output", "o", formatJSON, "output format: json, yaml or table")
}

// state is shared by every command of one invocation.
type state struct {
	opts  Options
	flags globalFlags

	mu      sync.Mutex
	cfg     *config.Config
	session *session.Session
}

func (s *state) printer() (*printer, error) {
	return newPrinter(s.opts.Out, s.flags.output)
}

// configPath returns the --config path, or the default location.
func (s *state) configPath() (string, error) {
	if s.flags.configPath != "" {
		return s.flags.configPath, nil
	}
	return config.DefaultPath()
}

// config loads the config file once and applies flag overrides.
func (s *state) config() (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg != nil {
		return s.cfg, nil
	}
	cfg, err := config.Load(s.flags.configPath)
	if err != nil {
		return nil, err
	}
	if s.flags.region != "" {
		cfg.RegionID = s.flags.region
	}
	if s.flags.workspaceID != "" {
		cfg.WorkspaceID = s.flags.workspaceID
	}
	s.cfg = cfg
	return cfg, nil
}

func (s *state) getSession(ctx context.Context) (*session.Session, error) {
	cfg, err := s.config()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return s.session, nil
	}
	sess, err := s.opts.NewSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.session = sess
	return sess, nil
}

func (s *state) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}

// NewDefaultRootCmd returns the root command writing to stdout and stderr.
func NewDefaultRootCmd() *cobra.Command {
	return NewRootCmd(Options{Out: os.Stdout, ErrOut: os.Stderr})
}

// NewRootCmd returns the pai command tree.
func NewRootCmd(o Options) *cobra.Command {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.ErrOut == nil {
		o.ErrOut = os.Stderr
	}
	if o.NewSession == nil {
		o.NewSession = func(ctx context.Context, cfg *config.Config) (*session.Session, error) {
			return session.New(ctx, cfg)
		}
	}
	s := &state{opts: o}

	cmd := &cobra.Command{
		Use:           "pai",
		Short:         "Manage Alibaba Cloud PAI workloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.NewZapLogger(s.flags.logLevel, false)
			if err != nil {
				return fmt.Errorf("configuring logger: %w", err)
			}
			logging.SetLogger(logger)
			if _, err := newPrinter(o.Out, s.flags.output); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.SetOut(o.Out)
	cmd.SetErr(o.ErrOut)

	s.flags.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(newConfigCmd(s))
	cmd.AddCommand(newPipelineRunCmd(s))
	cmd.AddCommand(newDLCCmd(s))
	cmd.AddCommand(newTrainingJobCmd(s))
	cmd.AddCommand(newServiceCmd(s))
	cmd.AddCommand(newInstanceCmd(s))

	closeAfterRun(cmd, s)
	return cmd
}

// closeAfterRun wraps every RunE in the tree so the session is closed whether
// or not the command fails. Cobra skips post-run hooks after an error.
func closeAfterRun(cmd *cobra.Command, s *state) {
	for _, c := range cmd.Commands() {
		closeAfterRun(c, s)
	}
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			defer s.close()
			return run(c, args)
		}
	}
}
