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

package client

import (
	"fmt"
	"os"
	"strings"
)

// Service names used for endpoint resolution, logs and metrics.
const (
	ServicePAIFlow   = "paiflow"
	ServiceDLC       = "pai-dlc"
	ServiceEAS       = "pai-eas"
	ServiceWorkspace = "aiworkspace"
	ServiceDSW       = "pai-dsw"
	ServiceStudio    = "paistudio"
)

type serviceEndpoint struct {
	// product is the hostname prefix, e.g. "pai-dlc" in pai-dlc.cn-hangzhou.aliyuncs.com.
	product string
	envVar  string
	// regions overrides the generated hostname for specific regions.
	regions map[string]string
}

var serviceEndpoints = map[string]serviceEndpoint{
	ServicePAIFlow: {
		product: "paiflow",
		envVar:  "PAIFLOW_SERVICE_ENDPOINT",
	},
	ServiceDLC: {
		product: "pai-dlc",
		envVar:  "PAI_DLC_SERVICE_ENDPOINT",
	},
	ServiceEAS: {
		product: "pai-eas",
		envVar:  "PAI_EAS_SERVICE_ENDPOINT",
	},
	ServiceWorkspace: {
		product: "aiworkspace",
		envVar:  "AIWORKSPACE_SERVICE_ENDPOINT",
	},
	ServiceDSW: {
		product: "pai-dsw",
		envVar:  "PAI_DSW_SERVICE_ENDPOINT",
	},
	ServiceStudio: {
		product: "pai",
		envVar:  "PAISTUDIO_SERVICE_ENDPOINT",
		regions: map[string]string{
			"cn-hangzhou-finance": "pai.cn-hangzhou-finance.aliyuncs.com",
		},
	},
}

// EndpointEnvVar returns the environment variable that overrides service's endpoint.
func EndpointEnvVar(service string) string {
	return serviceEndpoints[service].envVar
}

// ResolveEndpoint returns the https endpoint of service in region. The
// {SERVICE}_SERVICE_ENDPOINT environment variable takes precedence over the region
// table and the generated <product>.<region>.aliyuncs.com hostname.
func ResolveEndpoint(service, region string) (string, error) {
	se, ok := serviceEndpoints[service]
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}

	host := os.Getenv(se.envVar)
	if host == "" {
		if region == "" {
			return "", fmt.Errorf("region is required to resolve the %s endpoint", service)
		}
		if h, ok := se.regions[region]; ok {
			host = h
		} else {
			host = fmt.Sprintf("%s.%s.aliyuncs.com", se.product, region)
		}
	}

	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimSuffix(host, "/"), nil
}
