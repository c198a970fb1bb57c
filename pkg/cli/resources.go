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
	"slices"

	"github.com/spf13/cobra"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/session"
)

// errSeq yields err once.
func errSeq[T any](err error) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) { yield(nil, err) }
}

func newPipelineRunCmd(st *state) *cobra.Command {
	return newResourceCmd(st, resource[paiflow.PipelineRun]{
		use:     "run",
		aliases: []string{"runs", "pipelinerun"},
		short:   "Manage pipeline runs",
		headers: []string{"ID", "NAME", "STATUS", "CREATED"},
		row: func(r *paiflow.PipelineRun) []string {
			return []string{r.PipelineRunID, r.Name, r.Status, formatTime(r.GmtCreateTime)}
		},
		list: func(ctx context.Context, s *session.Session, opts ...pager.Option) iter.Seq2[*paiflow.PipelineRun, error] {
			p, err := s.Jobs()
			if err != nil {
				return errSeq[paiflow.PipelineRun](err)
			}
			return p.List(ctx, paiflow.ListPipelineRunsRequest{}, opts...)
		},
		get: func(ctx context.Context, s *session.Session, id string) (*paiflow.PipelineRun, error) {
			p, err := s.Jobs()
			if err != nil {
				return nil, err
			}
			return p.Get(ctx, id)
		},
		wait: func(ctx context.Context, s *session.Session, run *paiflow.PipelineRun) error {
			p, err := s.Jobs()
			if err != nil {
				return err
			}
			return p.Wait(ctx, run)
		},
		actions: []action{
			{use: "terminate", short: "Terminate pipeline runs", done: "terminated", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.Jobs()
				if err != nil {
					return err
				}
				return p.Terminate(ctx, id)
			}},
			{use: "delete", short: "Delete pipeline runs", done: "deleted", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.Jobs()
				if err != nil {
					return err
				}
				return p.Delete(ctx, id)
			}},
		},
	})
}

func newDLCCmd(st *state) *cobra.Command {
	cmd := newResourceCmd(st, resource[dlc.Job]{
		use:     "dlc",
		aliases: []string{"dlc-job"},
		short:   "Manage DLC jobs",
		headers: []string{"ID", "NAME", "TYPE", "STATUS", "CREATED"},
		row: func(j *dlc.Job) []string {
			return []string{j.JobID, j.DisplayName, j.JobType, j.Status, formatTime(j.GmtCreateTime)}
		},
		list: func(ctx context.Context, s *session.Session, opts ...pager.Option) iter.Seq2[*dlc.Job, error] {
			p, err := s.DLC()
			if err != nil {
				return errSeq[dlc.Job](err)
			}
			return p.List(ctx, dlc.ListJobsRequest{}, opts...)
		},
		get: func(ctx context.Context, s *session.Session, id string) (*dlc.Job, error) {
			p, err := s.DLC()
			if err != nil {
				return nil, err
			}
			return p.Get(ctx, id)
		},
		wait: func(ctx context.Context, s *session.Session, job *dlc.Job) error {
			p, err := s.DLC()
			if err != nil {
				return err
			}
			return p.WaitForCompletion(ctx, job)
		},
		actions: []action{
			{use: "stop", short: "Stop DLC jobs", done: "stopped", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.DLC()
				if err != nil {
					return err
				}
				return p.Stop(ctx, id)
			}},
			{use: "delete", short: "Delete DLC jobs", done: "deleted", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.DLC()
				if err != nil {
					return err
				}
				return p.Delete(ctx, id)
			}},
		},
	})
	cmd.AddCommand(newDLCLogsCmd(st))
	return cmd
}

func newDLCLogsCmd(st *state) *cobra.Command {
	var maxLines int
	cmd := &cobra.Command{
		Use:   "logs ID",
		Short: "Print the trailing log lines of every pod of a DLC job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := st.getSession(ctx)
			if err != nil {
				return err
			}
			p, err := s.DLC()
			if err != nil {
				return err
			}
			job, err := p.Get(ctx, args[0])
			if err != nil {
				return err
			}
			logs, err := p.Logs(ctx, job, maxLines)
			if err != nil {
				return err
			}
			pods := make([]string, 0, len(logs))
			for pod := range logs {
				pods = append(pods, pod)
			}
			slices.Sort(pods)
			out := cmd.OutOrStdout()
			for _, pod := range pods {
				for _, line := range logs[pod] {
					fmt.Fprintf(out, "[%s] %s\n", pod, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "lines per pod, 0 uses the service default")
	return cmd
}

func newTrainingJobCmd(st *state) *cobra.Command {
	return newResourceCmd(st, resource[studio.TrainingJob]{
		use:     "training",
		aliases: []string{"training-job", "tj"},
		short:   "Manage training jobs",
		headers: []string{"ID", "NAME", "ALGORITHM", "STATUS"},
		row: func(j *studio.TrainingJob) []string {
			return []string{j.TrainingJobID, j.TrainingJobName, j.AlgorithmName, j.Status}
		},
		list: func(ctx context.Context, s *session.Session, opts ...pager.Option) iter.Seq2[*studio.TrainingJob, error] {
			p, err := s.TrainingJobs()
			if err != nil {
				return errSeq[studio.TrainingJob](err)
			}
			return p.List(ctx, studio.ListTrainingJobsRequest{}, opts...)
		},
		get: func(ctx context.Context, s *session.Session, id string) (*studio.TrainingJob, error) {
			p, err := s.TrainingJobs()
			if err != nil {
				return nil, err
			}
			return p.Get(ctx, id)
		},
		wait: func(ctx context.Context, s *session.Session, job *studio.TrainingJob) error {
			p, err := s.TrainingJobs()
			if err != nil {
				return err
			}
			return p.WaitForCompletion(ctx, job)
		},
		actions: []action{
			{use: "stop", short: "Stop training jobs", done: "stopped", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.TrainingJobs()
				if err != nil {
					return err
				}
				return p.Stop(ctx, id)
			}},
		},
	})
}

func newServiceCmd(st *state) *cobra.Command {
	return newResourceCmd(st, resource[eas.Service]{
		use:     "eas",
		aliases: []string{"service", "services"},
		short:   "Manage EAS inference services",
		headers: []string{"NAME", "STATUS", "RUNNING", "TOTAL", "ENDPOINT"},
		row: func(svc *eas.Service) []string {
			return []string{svc.ServiceName, svc.Status, formatInt(svc.RunningInstance), formatInt(svc.TotalInstance), svc.InternetEndpoint}
		},
		list: func(ctx context.Context, s *session.Session, opts ...pager.Option) iter.Seq2[*eas.Service, error] {
			p, err := s.Services()
			if err != nil {
				return errSeq[eas.Service](err)
			}
			return p.List(ctx, eas.ListServicesRequest{}, opts...)
		},
		get: func(ctx context.Context, s *session.Session, name string) (*eas.Service, error) {
			p, err := s.Services()
			if err != nil {
				return nil, err
			}
			return p.Describe(ctx, name)
		},
		wait: func(ctx context.Context, s *session.Session, svc *eas.Service) error {
			p, err := s.Services()
			if err != nil {
				return err
			}
			return p.WaitForReady(ctx, svc)
		},
		waitStopped: func(ctx context.Context, s *session.Session, svc *eas.Service) error {
			p, err := s.Services()
			if err != nil {
				return err
			}
			return p.WaitForStopped(ctx, svc)
		},
		actions: []action{
			{use: "start", short: "Start EAS services", done: "starting", run: func(ctx context.Context, s *session.Session, name string) error {
				p, err := s.Services()
				if err != nil {
					return err
				}
				return p.Start(ctx, name)
			}},
			{use: "stop", short: "Stop EAS services", done: "stopping", run: func(ctx context.Context, s *session.Session, name string) error {
				p, err := s.Services()
				if err != nil {
					return err
				}
				return p.Stop(ctx, name)
			}},
			{use: "delete", short: "Delete EAS services", done: "deleted", run: func(ctx context.Context, s *session.Session, name string) error {
				p, err := s.Services()
				if err != nil {
					return err
				}
				return p.Delete(ctx, name)
			}},
		},
	})
}

func newInstanceCmd(st *state) *cobra.Command {
	return newResourceCmd(st, resource[dsw.Instance]{
		use:     "dsw",
		aliases: []string{"instance", "instances"},
		short:   "Manage DSW notebook instances",
		headers: []string{"ID", "NAME", "STATUS", "SPEC", "CREATED"},
		row: func(inst *dsw.Instance) []string {
			return []string{inst.InstanceID, inst.InstanceName, inst.Status, inst.EcsSpec, formatTime(inst.GmtCreateTime)}
		},
		list: func(ctx context.Context, s *session.Session, opts ...pager.Option) iter.Seq2[*dsw.Instance, error] {
			p, err := s.Instances()
			if err != nil {
				return errSeq[dsw.Instance](err)
			}
			return p.List(ctx, dsw.ListInstancesRequest{}, opts...)
		},
		get: func(ctx context.Context, s *session.Session, id string) (*dsw.Instance, error) {
			p, err := s.Instances()
			if err != nil {
				return nil, err
			}
			return p.Get(ctx, id)
		},
		wait: func(ctx context.Context, s *session.Session, inst *dsw.Instance) error {
			p, err := s.Instances()
			if err != nil {
				return err
			}
			return p.WaitForRunning(ctx, inst)
		},
		waitStopped: func(ctx context.Context, s *session.Session, inst *dsw.Instance) error {
			p, err := s.Instances()
			if err != nil {
				return err
			}
			return p.WaitForStopped(ctx, inst)
		},
		actions: []action{
			{use: "start", short: "Start DSW instances", done: "starting", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.Instances()
				if err != nil {
					return err
				}
				return p.Start(ctx, id)
			}},
			{use: "stop", short: "Stop DSW instances", done: "stopping", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.Instances()
				if err != nil {
					return err
				}
				return p.Stop(ctx, id)
			}},
			{use: "delete", short: "Delete DSW instances", done: "deleted", run: func(ctx context.Context, s *session.Session, id string) error {
				p, err := s.Instances()
				if err != nil {
					return err
				}
				return p.Delete(ctx, id)
			}},
		},
	})
}
