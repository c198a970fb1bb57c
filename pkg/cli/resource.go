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
	"context"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/spf13/cobra"

	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/session"
)

// resource describes the commands of one remote resource type.
type resource[T any] struct {
	use     string
	aliases []string
	short   string
	headers []string
	row     func(*T) []string

	list func(ctx context.Context, s *session.Session, opts ...pager.Option) iter.Seq2[*T, error]
	get  func(ctx context.Context, s *session.Session, id string) (*T, error)
	// wait blocks until the resource is ready or done. waitStopped, when set,
	// adds "--for stopped".
	wait        func(ctx context.Context, s *session.Session, obj *T) error
	waitStopped func(ctx context.Context, s *session.Session, obj *T) error

	actions []action
}

// action is a state change on one resource, like stop or delete.
type action struct {
	use   string
	short string
	done  string
	run   func(ctx context.Context, s *session.Session, id string) error
}

func newResourceCmd[T any](st *state, r resource[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     r.use,
		Aliases: r.aliases,
		Short:   r.short,
	}
	cmd.AddCommand(newListCmd(st, r), newGetCmd(st, r), newWaitCmd(st, r))
	for _, a := range r.actions {
		cmd.AddCommand(newActionCmd(st, a))
	}
	return cmd
}

func newListCmd[T any](st *state, r resource[T]) *cobra.Command {
	var limit, pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := st.getSession(ctx)
			if err != nil {
				return err
			}
			p, err := st.printer()
			if err != nil {
				return err
			}
			var opts []pager.Option
			if pageSize > 0 {
				opts = append(opts, pager.WithPageSize(pageSize))
			}

			items := []*T{}
			t := table{headers: r.headers}
			for item, err := range r.list(ctx, s, opts...) {
				if err != nil {
					return err
				}
				items = append(items, item)
				t.rows = append(t.rows, r.row(item))
				if limit > 0 && len(items) == limit {
					break
				}
			}
			return p.print(items, t)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many items, 0 lists everything")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "items requested per page")
	return cmd
}

func newGetCmd[T any](st *state, r resource[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := st.getSession(ctx)
			if err != nil {
				return err
			}
			obj, err := r.get(ctx, s, args[0])
			if err != nil {
				return err
			}
			return printOne(st, r, obj)
		},
	}
}

func newWaitCmd[T any](st *state, r resource[T]) *cobra.Command {
	var (
		timeout time.Duration
		target  string
	)
	cmd := &cobra.Command{
		Use:   "wait ID",
		Short: "Block until the resource reaches a terminal status and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wait := r.wait
			switch target {
			case "", "ready":
			case "stopped":
				if r.waitStopped == nil {
					return fmt.Errorf("%s cannot be waited on until stopped", r.use)
				}
				wait = r.waitStopped
			default:
				return fmt.Errorf("unknown wait target %q, want ready or stopped", target)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			s, err := st.getSession(ctx)
			if err != nil {
				return err
			}
			obj, err := r.get(ctx, s, args[0])
			if err != nil {
				return err
			}
			waitErr := wait(ctx, s, obj)
			if err := printOne(st, r, obj); err != nil {
				return err
			}
			return waitErr
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long, 0 waits forever")
	if r.waitStopped != nil {
		cmd.Flags().StringVar(&target, "for", "ready", "status to wait for: ready or stopped")
	}
	return cmd
}

func newActionCmd(st *state, a action) *cobra.Command {
	return &cobra.Command{
		Use:   a.use + " ID...",
		Short: a.short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := st.getSession(ctx)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := a.run(ctx, s, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, a.done)
			}
			return nil
		},
	}
}

func printOne[T any](st *state, r resource[T], obj *T) error {
	p, err := st.printer()
	if err != nil {
		return err
	}
	return p.print(obj, table{headers: r.headers, rows: [][]string{r.row(obj)}})
}

func formatTime(t *strfmt.DateTime) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
