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

package pipelinerun

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned for manifests that cannot be submitted.
var ErrInvalidManifest = errors.New("invalid pipeline manifest")

// Manifest is a PAIFlow pipeline definition. Only the fields the SDK inspects are
// modelled; everything else under spec is kept verbatim.
type Manifest struct {
	APIVersion string   `yaml:"apiVersion"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

type Metadata struct {
	Identifier  string            `yaml:"identifier"`
	Provider    string            `yaml:"provider"`
	Version     string            `yaml:"version"`
	Name        string            `yaml:"name,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

type Spec struct {
	Inputs  Inputs                 `yaml:"inputs,omitempty"`
	Outputs Inputs                 `yaml:"outputs,omitempty"`
	Rest    map[string]interface{} `yaml:",inline"`
}

type Inputs struct {
	Parameters []Parameter `yaml:"parameters,omitempty"`
	Artifacts  []Artifact  `yaml:"artifacts,omitempty"`
}

// Parameter is a pipeline input. A parameter without a value must be supplied
// as an argument at submission.
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type,omitempty"`
	Value       interface{} `yaml:"value,omitempty"`
	Description string      `yaml:"description,omitempty"`
}

type Artifact struct {
	Name     string                 `yaml:"name"`
	Metadata map[string]interface{} `yaml:"metadata,omitempty"`
	Value    interface{}            `yaml:"value,omitempty"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// Validate checks that the manifest identifies its pipeline.
func (m *Manifest) Validate() error {
	var missing []string
	if m.APIVersion == "" {
		missing = append(missing, "apiVersion")
	}
	if m.Metadata.Identifier == "" {
		missing = append(missing, "metadata.identifier")
	}
	if m.Metadata.Provider == "" {
		missing = append(missing, "metadata.provider")
	}
	if m.Metadata.Version == "" {
		missing = append(missing, "metadata.version")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidManifest, strings.Join(missing, ", "))
	}
	seen := map[string]bool{}
	for _, p := range m.Spec.Inputs.Parameters {
		if p.Name == "" {
			return fmt.Errorf("%w: input parameter without a name", ErrInvalidManifest)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate input parameter %q", ErrInvalidManifest, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Parameter returns the named input parameter.
func (m *Manifest) Parameter(name string) (Parameter, bool) {
	for _, p := range m.Spec.Inputs.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// CheckArguments reports arguments the manifest does not declare and declared
// parameters that have neither a default nor an argument.
func (m *Manifest) CheckArguments(args map[string]interface{}) error {
	var unknown, missing []string
	for name := range args {
		if _, ok := m.Parameter(name); !ok {
			unknown = append(unknown, name)
		}
	}
	for _, p := range m.Spec.Inputs.Parameters {
		if _, ok := args[p.Name]; !ok && p.Value == nil {
			missing = append(missing, p.Name)
		}
	}
	sort.Strings(unknown)
	sort.Strings(missing)

	var problems []string
	if len(unknown) > 0 {
		problems = append(problems, "unknown parameters "+strings.Join(unknown, ", "))
	}
	if len(missing) > 0 {
		problems = append(problems, "parameters without value "+strings.Join(missing, ", "))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(problems, "; "))
	}
	return nil
}

type argument struct {
	Name  string      `yaml:"name"`
	Value interface{} `yaml:"value"`
}

type arguments struct {
	Arguments struct {
		Parameters []argument `yaml:"parameters"`
	} `yaml:"arguments"`
}

// EncodeArguments renders run arguments in the document form PAIFlow expects,
// with parameters sorted by name. No arguments encode to "".
func EncodeArguments(args map[string]interface{}) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	var doc arguments
	for name, value := range args {
		doc.Arguments.Parameters = append(doc.Arguments.Parameters, argument{Name: name, Value: value})
	}
	sort.Slice(doc.Arguments.Parameters, func(i, j int) bool {
		return doc.Arguments.Parameters[i].Name < doc.Arguments.Parameters[j].Name
	})
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding arguments: %w", err)
	}
	return string(out), nil
}
