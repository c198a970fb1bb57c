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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace     = "pai"
	APISubsystem  = "api"
	WaitSubsystem = "wait"
)

// Registry holds every collector of the SDK. Callers expose it through their own
// HTTP handler when they want the numbers.
var Registry = prometheus.NewRegistry()

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "requests_total",
			Help:      "Total PAI API requests by service, action and HTTP status",
		},
		[]string{"service", "action", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of PAI API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "action"},
	)

	WaitPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WaitSubsystem,
			Name:      "polls_total",
			Help:      "Status refreshes issued while waiting for a terminal state",
		},
		[]string{"kind"},
	)

	WaitTerminalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WaitSubsystem,
			Name:      "terminal_total",
			Help:      "Waits that ended, by resource kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		WaitPollsTotal,
		WaitTerminalTotal,
	)
}

// RecordAPIRequest counts one API request and observes its latency.
func RecordAPIRequest(service, action, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(service, action, status).Inc()
	APIRequestDuration.WithLabelValues(service, action).Observe(duration.Seconds())
}

func RecordWaitPoll(kind string) {
	WaitPollsTotal.WithLabelValues(kind).Inc()
}

func RecordWaitOutcome(kind, outcome string) {
	WaitTerminalTotal.WithLabelValues(kind, outcome).Inc()
}
