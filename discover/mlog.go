// Copyright 2017 The go-ethereum Authors
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

// This file 'mlog' is home to the 'discover' package implementation of mlog.
// All available mlog lines are established here as variables and documented.
// For each instance of an mlog call, the respective MLogT variable's
// SetDetailValues() method is called with per-use instance details.

package discover

import (
	"sync"

	"github.com/input-output-hk/peer-discovery/logger"
	"github.com/input-output-hk/peer-discovery/logger/glog"
)

var mlog *logger.Logger
var mlogOnce sync.Once

// initMLogging registers a logger for the discover package. It should only
// be called once; use mlogOnce.Do(initMLogging).
func initMLogging() {
	mlog = logger.NewLogger("discover")
}

// findNodeVerbosity/pingVerbosity gate the two highest-frequency mlog call
// sites behind -vmodule=discover=N / -verbosity=N, on top of (not instead
// of) the mlog line itself: a node under load can dial these down with a
// flag without losing the structured bootstrap/admit/eviction lines below.
const (
	findNodeVerbosity glog.Level = 1
	pingVerbosity     glog.Level = 2
)

// Collect and document available mlog lines.

var mlogBootstrapDone = logger.MLogT{
	Description: "Called once a bootstrap attempt from a seed peer finishes.",
	Receiver:    "BOOTSTRAP",
	Verb:        "FINISH",
	Subject:     "SELF",
	Details: []logger.MLogDetailT{
		{"BOOTSTRAP", "SUCCESS", "BOOL"},
	},
}

var mlogSelfReachabilityFailed = logger.MLogT{
	Description: "Called when the announced-port self-reachability probe fails during bootstrap.",
	Receiver:    "BOOTSTRAP",
	Verb:        "FAIL",
	Subject:     "SELF_REACHABILITY",
	Details:     []logger.MLogDetailT{},
}

var mlogFindNodeHandleFrom = logger.MLogT{
	Description: "Called once for each FindNode request handled.",
	Receiver:    "FIND_NODE",
	Verb:        "HANDLE",
	Subject:     "FROM",
	Details: []logger.MLogDetailT{
		{"FROM", "UDP_ADDRESS", "STRING"},
		{"FROM", "ID", "STRING"},
	},
}

var mlogPingHandleFrom = logger.MLogT{
	Description: "Called once for each Ping request handled.",
	Receiver:    "PING",
	Verb:        "HANDLE",
	Subject:     "FROM",
	Details: []logger.MLogDetailT{
		{"FROM", "UDP_ADDRESS", "STRING"},
	},
}

var mlogAdmitRejected = logger.MLogT{
	Description: "Called when a candidate peer is rejected by the routing table.",
	Receiver:    "ADMIT",
	Verb:        "REJECT",
	Subject:     "PEER",
	Details: []logger.MLogDetailT{
		{"PEER", "ID", "STRING"},
		{"PEER", "IP_LIMITED", "BOOL"},
	},
}

var mlogMaintenanceEvicted = logger.MLogT{
	Description: "Called when maintenance evicts an unresponsive peer in favor of a replacement.",
	Receiver:    "MAINTENANCE",
	Verb:        "EVICT",
	Subject:     "PEER",
	Details: []logger.MLogDetailT{
		{"PEER", "ID", "STRING"},
		{"REPLACEMENT", "ID", "STRING"},
	},
}

// mLogLines is every available mlog line this package emits, submitted to
// the registry the same way every other package (fetcher, downloader,
// eth, p2p, miner, state) submits its own.
var mLogLines = []logger.MLogT{
	mlogBootstrapDone,
	mlogSelfReachabilityFailed,
	mlogFindNodeHandleFrom,
	mlogPingHandleFrom,
	mlogAdmitRejected,
	mlogMaintenanceEvicted,
}

var mlogDiscover = logger.MLogRegisterAvailable("discover", mLogLines)

func (in *Instance) logBootstrapOutcome(success bool) {
	mlogOnce.Do(initMLogging)
	mlog.Infoln(mlogBootstrapDone.SetDetailValues(success).String())
	if in.metrics != nil {
		if success {
			in.metrics.BootstrapSuccess.Inc(1)
		} else {
			in.metrics.BootstrapFailure.Inc(1)
		}
	}
}

func (in *Instance) logSelfReachabilityFailed() {
	mlogOnce.Do(initMLogging)
	mlog.Warnln(mlogSelfReachabilityFailed.String())
	if in.metrics != nil {
		in.metrics.SelfUnreachable.Inc(1)
	}
}

func (in *Instance) logFindNodeHandled(from Peer, id PeerID) {
	mlogOnce.Do(initMLogging)
	mlog.Debugln(mlogFindNodeHandleFrom.SetDetailValues(from.String(), id.String()).String())
	if glog.V(findNodeVerbosity) {
		glog.Infof("discover: findnode from %s for %s", from, id)
	}
}

func (in *Instance) logPingHandled(from Peer) {
	mlogOnce.Do(initMLogging)
	mlog.Debugln(mlogPingHandleFrom.SetDetailValues(from.String()).String())
	if glog.V(pingVerbosity) {
		glog.Infof("discover: ping from %s", from)
	}
}

func (in *Instance) logAdmitRejected(n Node, ipLimited bool) {
	mlogOnce.Do(initMLogging)
	mlog.Debugln(mlogAdmitRejected.SetDetailValues(n.ID.String(), ipLimited).String())
	if in.metrics != nil {
		if ipLimited {
			in.metrics.AdmitIPLimited.Inc(1)
		} else {
			in.metrics.AdmitRejected.Inc(1)
		}
	}
}

func (in *Instance) logMaintenanceEvicted(evicted, replacement PeerID) {
	mlogOnce.Do(initMLogging)
	mlog.Debugln(mlogMaintenanceEvicted.SetDetailValues(evicted.String(), replacement.String()).String())
	if in.metrics != nil {
		in.metrics.MaintenanceEvictions.Inc(1)
	}
}
