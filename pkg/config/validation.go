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

package config

import (
	"fmt"
	"regexp"
)

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z0-9]+)+$`)

// Validate checks that the settings needed to call the service are present.
func (c *Config) Validate() error {
	var missingFields []string

	if c.AccessKeyID == "" {
		missingFields = append(missingFields, KeyAccessKeyID)
	}
	if c.AccessKeySecret == "" {
		missingFields = append(missingFields, KeyAccessKeySecret)
	}
	if c.RegionID == "" {
		missingFields = append(missingFields, KeyRegionID)
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required settings: %v", missingFields)
	}

	if !regionPattern.MatchString(c.RegionID) {
		return fmt.Errorf("invalid region: %s", c.RegionID)
	}
	if (c.OSSBucketName == "") != (c.OSSEndpoint == "") {
		return fmt.Errorf("%s and %s must be set together", KeyOSSBucketName, KeyOSSEndpoint)
	}
	return nil
}
