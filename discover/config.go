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

import "time"

// Config holds the tunables of the Kademlia core.
type Config struct {
	// Alpha is the concurrency width per lookup round, and the number of
	// disjoint paths D a lookup fans out across.
	Alpha int
	// K is the bucket size and the lookup result width.
	K int
	// B is the maximum split depth of non-home branches of the routing tree.
	B int
	// MaxTimeouts is the number of consecutive RPC failures before a node
	// becomes an eviction candidate during maintenance.
	MaxTimeouts int
	// ResponseTimeout bounds every outbound RPC.
	ResponseTimeout time.Duration
	// MaintenanceInterval is how often the external runtime is expected to
	// invoke maintenance; stored here only so it travels with the rest of
	// the tunables, the core does not start its own timer for it.
	MaintenanceInterval time.Duration
}

// DefaultConfig returns the package defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:               3,
		K:                   10,
		B:                   5,
		MaxTimeouts:         3,
		ResponseTimeout:     500 * time.Millisecond,
		MaintenanceInterval: 1 * time.Minute,
	}
}

// normalize fills in zero fields with defaults so a caller can supply a
// partial Config literal.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Alpha <= 0 {
		c.Alpha = d.Alpha
	}
	if c.K <= 0 {
		c.K = d.K
	}
	if c.B <= 0 {
		c.B = d.B
	}
	if c.MaxTimeouts <= 0 {
		c.MaxTimeouts = d.MaxTimeouts
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = d.ResponseTimeout
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = d.MaintenanceInterval
	}
	return c
}
