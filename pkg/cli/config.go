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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfeifferj/pai-go-sdk/pkg/config"
)

func newConfigCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the local configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration with secrets redacted",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cfg, err := s.config()
				if err != nil {
					return err
				}
				p, err := s.printer()
				if err != nil {
					return err
				}
				redacted := cfg.Redacted()
				t := table{headers: []string{"KEY", "VALUE"}}
				for _, key := range config.Keys() {
					value, _ := redacted.Get(key)
					t.rows = append(t.rows, []string{key, value})
				}
				return p.print(redacted, t)
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print one configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := s.config()
				if err != nil {
					return err
				}
				redacted := cfg.Redacted()
				value, err := redacted.Get(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
				return err
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Store a value in the config file",
			Long:  fmt.Sprintf("Store a value in the config file. Valid keys: %v.", config.Keys()),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := s.configPath()
				if err != nil {
					return err
				}
				// Flag and environment overrides must not leak into the file.
				cfg, err := config.LoadFile(path)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := config.Save(path, cfg); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s in %s\n", args[0], path)
				return err
			},
		},
	)
	return cmd
}
