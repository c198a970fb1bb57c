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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

func TestQuery(t *testing.T) {
	q := NewQuery(Pagination{PageNumber: 2}).
		Set("WorkspaceId", "ws-1").
		Set("Name", "").
		SetInt("Zero", 0).
		SetBool("Verbose", ptr.To(true)).
		SetBool("Unset", nil).
		SetList("Ids", []string{"a", "b"}).
		SetLabels("Labels", map[string]string{"system.framework": "PyTorch", "system.chipType": "GPU"})

	assert.Equal(t, Query{
		"PageNumber":  "2",
		"WorkspaceId": "ws-1",
		"Verbose":     "true",
		"Ids":         "a,b",
		"Labels":      "system.chipType=GPU,system.framework=PyTorch",
	}, q)
}

func TestLabelsFromMap(t *testing.T) {
	assert.Nil(t, LabelsFromMap(nil))
	assert.Equal(t, []Label{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
		LabelsFromMap(map[string]string{"b": "2", "a": "1"}))
}
