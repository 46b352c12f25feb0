// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package discover

import "github.com/rcrowley/go-metrics"

// Metrics collects the counters and timers an operator dashboards a running
// instance with. It wraps go-metrics registries rather than hand-rolling
// atomic counters.
type Metrics struct {
	registry metrics.Registry

	BootstrapSuccess metrics.Counter
	BootstrapFailure metrics.Counter
	SelfUnreachable  metrics.Counter

	LookupCalls    metrics.Counter
	LookupDuration metrics.Timer

	AdmitAccepted  metrics.Counter
	AdmitRejected  metrics.Counter
	AdmitIPLimited metrics.Counter

	MaintenanceEvictions metrics.Counter
	MaintenanceRevivals  metrics.Counter
}

// NewMetrics creates a fresh, unregistered Metrics instance. Callers that
// want the counters exposed through go-metrics' exp/expvar reporters can
// register in.Registry() themselves.
func NewMetrics() *Metrics {
	r := metrics.NewRegistry()
	m := &Metrics{
		registry:             r,
		BootstrapSuccess:     metrics.NewRegisteredCounter("discover/bootstrap/success", r),
		BootstrapFailure:     metrics.NewRegisteredCounter("discover/bootstrap/failure", r),
		SelfUnreachable:      metrics.NewRegisteredCounter("discover/bootstrap/self-unreachable", r),
		LookupCalls:          metrics.NewRegisteredCounter("discover/lookup/calls", r),
		LookupDuration:       metrics.NewRegisteredTimer("discover/lookup/duration", r),
		AdmitAccepted:        metrics.NewRegisteredCounter("discover/admit/accepted", r),
		AdmitRejected:        metrics.NewRegisteredCounter("discover/admit/rejected", r),
		AdmitIPLimited:       metrics.NewRegisteredCounter("discover/admit/ip-limited", r),
		MaintenanceEvictions: metrics.NewRegisteredCounter("discover/maintenance/evictions", r),
		MaintenanceRevivals:  metrics.NewRegisteredCounter("discover/maintenance/revivals", r),
	}
	return m
}

// Registry exposes the underlying go-metrics registry for reporters.
func (m *Metrics) Registry() metrics.Registry { return m.registry }
