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

package fake

import (
	"context"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
)

var _ client.DSWAPI = (*DSWAPI)(nil)

// DSWBehavior controls the fake DSW API behavior for testing
type DSWBehavior struct {
	GetInstanceBehavior    MockedFunction[string, dsw.Instance]
	ListInstancesBehavior  MockedFunction[dsw.ListInstancesRequest, dsw.ListInstancesResponse]
	StartInstanceBehavior  MockedFunction[string, struct{}]
	StopInstanceBehavior   MockedFunction[string, struct{}]
	DeleteInstanceBehavior MockedFunction[string, struct{}]

	Instances Store[dsw.Instance]
	NextError AtomicError
}

// DSWAPI implements a fake DSW API for testing
type DSWAPI struct {
	*DSWBehavior
}

func NewDSWAPI() *DSWAPI {
	return &DSWAPI{DSWBehavior: &DSWBehavior{}}
}

func setInstanceStatus(i *dsw.Instance, status string) { i.Status = status }

func (f *DSWAPI) GetInstance(_ context.Context, instanceID string) (*dsw.Instance, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.GetInstanceBehavior.invoke(instanceID)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	inst, ok := f.Instances.advance(instanceID, setInstanceStatus)
	if !ok {
		return nil, notFound("Instance", instanceID)
	}
	return inst, nil
}

func (f *DSWAPI) ListInstances(_ context.Context, req *dsw.ListInstancesRequest) (*dsw.ListInstancesResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListInstancesBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	instances := f.Instances.List(func(_ string, i *dsw.Instance) bool {
		return matches(req.WorkspaceID, i.WorkspaceID) &&
			matches(req.InstanceName, i.InstanceName) &&
			matches(req.Status, i.Status)
	})
	return &dsw.ListInstancesResponse{
		Instances:  paginate(instances, req.Pagination),
		TotalCount: int64(len(instances)),
	}, nil
}

func (f *DSWAPI) StartInstance(_ context.Context, instanceID string) error {
	return f.transition(&f.StartInstanceBehavior, instanceID, dsw.StatusStarting)
}

func (f *DSWAPI) StopInstance(_ context.Context, instanceID string) error {
	return f.transition(&f.StopInstanceBehavior, instanceID, dsw.StatusStopping)
}

func (f *DSWAPI) DeleteInstance(_ context.Context, instanceID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.DeleteInstanceBehavior.invoke(instanceID); err != nil {
		return err
	}
	if !f.Instances.Delete(instanceID) {
		return notFound("Instance", instanceID)
	}
	return nil
}

func (f *DSWAPI) transition(behavior *MockedFunction[string, struct{}], instanceID, status string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := behavior.invoke(instanceID); err != nil {
		return err
	}
	if !f.Instances.Update(instanceID, func(i *dsw.Instance) { i.Status = status }) {
		return notFound("Instance", instanceID)
	}
	return nil
}
