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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/samber/lo"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ client.EASAPI = (*EASAPI)(nil)

// DefaultRegion is where the fake EAS API places new services.
const DefaultRegion = "cn-hangzhou"

// ServiceInput identifies a service in recorded calls.
type ServiceInput struct {
	Region string
	Name   string
}

// EASBehavior controls the fake EAS API behavior for testing
type EASBehavior struct {
	CreateServiceBehavior   MockedFunction[eas.ServiceConfig, eas.CreateServiceResponse]
	DescribeServiceBehavior MockedFunction[ServiceInput, eas.Service]
	ListServicesBehavior    MockedFunction[eas.ListServicesRequest, eas.ListServicesResponse]
	UpdateServiceBehavior   MockedFunction[ServiceInput, struct{}]
	StartServiceBehavior    MockedFunction[ServiceInput, struct{}]
	StopServiceBehavior     MockedFunction[ServiceInput, struct{}]
	DeleteServiceBehavior   MockedFunction[ServiceInput, struct{}]

	// Services is keyed by "<region>/<name>"; see ServiceKey.
	Services  Store[eas.Service]
	NextError AtomicError
}

// EASAPI implements a fake EAS API for testing
type EASAPI struct {
	*EASBehavior
}

func NewEASAPI() *EASAPI {
	return &EASAPI{EASBehavior: &EASBehavior{}}
}

// ServiceKey is the Services store key for a region and name.
func ServiceKey(region, name string) string {
	return region + "/" + name
}

func setServiceStatus(s *eas.Service, status string) { s.Status = status }

func (f *EASAPI) CreateService(_ context.Context, cfg *eas.ServiceConfig) (*eas.CreateServiceResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.CreateServiceBehavior.invoke(*cfg)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	if cfg.Name == "" {
		return nil, badRequest("service name is required")
	}
	key := ServiceKey(DefaultRegion, cfg.Name)
	if _, ok := f.Services.Get(key); ok {
		return nil, &httpclient.APIError{
			StatusCode: http.StatusConflict,
			Code:       "ServiceAlreadyExists",
			Message:    fmt.Sprintf("service %s already exists", cfg.Name),
			Endpoint:   "fake",
		}
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	svc := eas.Service{
		ServiceName:      cfg.Name,
		ServiceID:        f.Services.NextID("eas"),
		Region:           DefaultRegion,
		Status:           eas.StatusCreating,
		CPU:              cfg.Metadata.CPU,
		Memory:           cfg.Metadata.Memory,
		GPU:              cfg.Metadata.GPU,
		TotalInstance:    cfg.Metadata.Instance,
		PendingInstance:  cfg.Metadata.Instance,
		InternetEndpoint: fmt.Sprintf("http://fake.%s.pai-eas.aliyuncs.com/api/predict/%s", DefaultRegion, cfg.Name),
		ServiceConfig:    string(raw),
		WorkspaceID:      cfg.Metadata.Workspace,
		CreateTime:       lo.ToPtr(strfmt.DateTime(time.Now())),
	}
	if len(cfg.Container) > 0 {
		svc.Image = cfg.Container[0].Image
	}
	f.Services.Put(key, svc)
	return &eas.CreateServiceResponse{
		ServiceName:      svc.ServiceName,
		ServiceID:        svc.ServiceID,
		Region:           svc.Region,
		Status:           svc.Status,
		InternetEndpoint: svc.InternetEndpoint,
	}, nil
}

func (f *EASAPI) DescribeService(_ context.Context, region, name string) (*eas.Service, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.DescribeServiceBehavior.invoke(ServiceInput{Region: region, Name: name})
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	svc, ok := f.Services.advance(ServiceKey(region, name), setServiceStatus)
	if !ok {
		return nil, notFound("Service", name)
	}
	return svc, nil
}

func (f *EASAPI) ListServices(_ context.Context, req *eas.ListServicesRequest) (*eas.ListServicesResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListServicesBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	services := f.Services.List(func(_ string, s *eas.Service) bool {
		return matches(req.WorkspaceID, s.WorkspaceID) &&
			(req.Filter == "" || lo.Contains([]string{s.ServiceName, s.ServiceID}, req.Filter))
	})
	return &eas.ListServicesResponse{
		Services:   paginate(services, req.Pagination),
		TotalCount: int64(len(services)),
		PageNumber: int64(req.PageNumber),
		PageSize:   int64(req.PageSize),
	}, nil
}

func (f *EASAPI) UpdateService(_ context.Context, region, name string, cfg *eas.ServiceConfig) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.UpdateServiceBehavior.invoke(ServiceInput{Region: region, Name: name}); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if !f.Services.Update(ServiceKey(region, name), func(s *eas.Service) {
		s.Status = eas.StatusUpdating
		s.ServiceConfig = string(raw)
		s.TotalInstance = cfg.Metadata.Instance
		s.UpdateTime = lo.ToPtr(strfmt.DateTime(time.Now()))
	}) {
		return notFound("Service", name)
	}
	return nil
}

func (f *EASAPI) StartService(_ context.Context, region, name string) error {
	return f.transition(&f.StartServiceBehavior, region, name, eas.StatusRunning)
}

func (f *EASAPI) StopService(_ context.Context, region, name string) error {
	return f.transition(&f.StopServiceBehavior, region, name, eas.StatusStopped)
}

func (f *EASAPI) DeleteService(_ context.Context, region, name string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.DeleteServiceBehavior.invoke(ServiceInput{Region: region, Name: name}); err != nil {
		return err
	}
	if !f.Services.Delete(ServiceKey(region, name)) {
		return notFound("Service", name)
	}
	return nil
}

func (f *EASAPI) transition(behavior *MockedFunction[ServiceInput, struct{}], region, name, status string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := behavior.invoke(ServiceInput{Region: region, Name: name}); err != nil {
		return err
	}
	if !f.Services.Update(ServiceKey(region, name), func(s *eas.Service) { s.Status = status }) {
		return notFound("Service", name)
	}
	return nil
}
