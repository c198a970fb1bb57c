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

package providers

import (
	"testing"

	"github.com/IBM/go-sdk-core/v5/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/fake"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
)

func fakeAPIs() APIs {
	return APIs{
		PAIFlow:   fake.NewPAIFlowAPI(),
		DLC:       fake.NewDLCAPI(),
		EAS:       fake.NewEASAPI(),
		Workspace: fake.NewWorkspaceAPI(),
		DSW:       fake.NewDSWAPI(),
		Studio:    fake.NewStudioAPI(),
	}
}

func TestNewProviderFactory(t *testing.T) {
	_, err := NewProviderFactory(fakeAPIs(), "")
	assert.ErrorIs(t, err, client.ErrMissingArgument)

	_, err = NewProviderFactory(fakeAPIs(), "cn-hangzhou", lifecycle.WithPollInterval(-1))
	assert.Error(t, err)

	f, err := NewProviderFactory(fakeAPIs(), "cn-hangzhou", lifecycle.WithWorkspaceID("ws-1"))
	require.NoError(t, err)
	assert.Equal(t, "cn-hangzhou", f.Region())
}

func TestProviderFactorySharesProviders(t *testing.T) {
	f, err := NewProviderFactory(fakeAPIs(), "cn-hangzhou")
	require.NoError(t, err)
	defer f.Close()

	runs, err := f.PipelineRuns()
	require.NoError(t, err)
	again, err := f.PipelineRuns()
	require.NoError(t, err)
	assert.Same(t, runs, again)

	_, err = f.DLC()
	require.NoError(t, err)
	_, err = f.TrainingJobs()
	require.NoError(t, err)
	_, err = f.Services()
	require.NoError(t, err)
	_, err = f.Instances()
	require.NoError(t, err)
	_, err = f.Workspace()
	require.NoError(t, err)
	images, err := f.Images()
	require.NoError(t, err)
	assert.NotNil(t, images)
}

func TestProviderFactoryMissingAPIs(t *testing.T) {
	f, err := NewProviderFactory(APIs{}, "cn-hangzhou")
	require.NoError(t, err)

	_, err = f.PipelineRuns()
	assert.Error(t, err)
	_, err = f.DLC()
	assert.Error(t, err)
	_, err = f.TrainingJobs()
	assert.Error(t, err)
	_, err = f.Services()
	assert.Error(t, err)
	_, err = f.Instances()
	assert.Error(t, err)
	_, err = f.Workspace()
	assert.Error(t, err)
	_, err = f.Images()
	assert.Error(t, err)
}

func TestAPIsFromClient(t *testing.T) {
	_, err := APIsFromClient(nil)
	assert.Error(t, err)

	c, err := client.NewClient("cn-shanghai", &core.NoAuthAuthenticator{})
	require.NoError(t, err)
	apis, err := APIsFromClient(c)
	require.NoError(t, err)
	assert.NotNil(t, apis.PAIFlow)
	assert.NotNil(t, apis.Studio)
}
