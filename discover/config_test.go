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
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFillsZeroFieldsWithDefaults(t *testing.T) {
	got := Config{Alpha: 7}.normalize()
	def := DefaultConfig()

	assert.Equal(t, 7, got.Alpha)
	assert.Equal(t, def.K, got.K)
	assert.Equal(t, def.B, got.B)
	assert.Equal(t, def.MaxTimeouts, got.MaxTimeouts)
	assert.Equal(t, def.ResponseTimeout, got.ResponseTimeout)
	assert.Equal(t, def.MaintenanceInterval, got.MaintenanceInterval)
}

func TestNormalizePreservesFullySpecifiedConfig(t *testing.T) {
	c := Config{Alpha: 1, K: 2, B: 3, MaxTimeouts: 4, ResponseTimeout: time.Second, MaintenanceInterval: time.Hour}
	got := c.normalize()
	assert.Equal(t, c, got)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, c, c.normalize())
}
