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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersAllCounters(t *testing.T) {
	m := NewMetrics()
	require.NotNil(t, m.Registry())

	m.BootstrapSuccess.Inc(1)
	m.AdmitAccepted.Inc(2)
	m.MaintenanceEvictions.Inc(1)

	assert.EqualValues(t, 1, m.BootstrapSuccess.Count())
	assert.EqualValues(t, 2, m.AdmitAccepted.Count())
	assert.EqualValues(t, 1, m.MaintenanceEvictions.Count())

	names := []string{
		"discover/bootstrap/success",
		"discover/bootstrap/failure",
		"discover/bootstrap/self-unreachable",
		"discover/lookup/calls",
		"discover/lookup/duration",
		"discover/admit/accepted",
		"discover/admit/rejected",
		"discover/admit/ip-limited",
		"discover/maintenance/evictions",
		"discover/maintenance/revivals",
	}
	for _, n := range names {
		assert.NotNil(t, m.Registry().Get(n), "metric %s should be registered", n)
	}
}
