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

// Package common holds wire types shared by every PAI service.
package common

import (
	"sort"
	"strconv"
	"strings"
)

// Accessibility values accepted by workspace-scoped resources.
const (
	AccessibilityPrivate = "PRIVATE"
	AccessibilityPublic  = "PUBLIC"
)

// Provider of resources published by the platform itself.
const ProviderPAI = "pai"

// Response is embedded in every response body.
type Response struct {
	RequestID string `json:"RequestId,omitempty"`
}

// Label is the key/value pair most services use for tagging.
type Label struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// LabelsFromMap returns labels sorted by key.
func LabelsFromMap(m map[string]string) []Label {
	if len(m) == 0 {
		return nil
	}
	labels := make([]Label, 0, len(m))
	for k, v := range m {
		labels = append(labels, Label{Key: k, Value: v})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Key < labels[j].Key })
	return labels
}

// Pagination is the request side of every List API.
type Pagination struct {
	PageNumber int
	PageSize   int
}

// Query maps request fields onto query string parameters. Zero values are skipped
// so the server applies its own defaults.
type Query map[string]string

// NewQuery seeds a query with the pagination fields.
func NewQuery(p Pagination) Query {
	q := Query{}
	q.SetInt("PageNumber", p.PageNumber)
	q.SetInt("PageSize", p.PageSize)
	return q
}

func (q Query) Set(key, value string) Query {
	if value != "" {
		q[key] = value
	}
	return q
}

func (q Query) SetInt(key string, value int) Query {
	if value != 0 {
		q[key] = strconv.Itoa(value)
	}
	return q
}

func (q Query) SetBool(key string, value *bool) Query {
	if value != nil {
		q[key] = strconv.FormatBool(*value)
	}
	return q
}

// SetList joins values with commas.
func (q Query) SetList(key string, values []string) Query {
	if len(values) > 0 {
		q[key] = strings.Join(values, ",")
	}
	return q
}

// SetLabels encodes labels as "k1=v1,k2=v2".
func (q Query) SetLabels(key string, labels map[string]string) Query {
	parts := make([]string, 0, len(labels))
	for _, l := range LabelsFromMap(labels) {
		parts = append(parts, l.Key+"="+l.Value)
	}
	return q.SetList(key, parts)
}
