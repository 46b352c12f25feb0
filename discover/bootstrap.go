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

// bootstrapState is the three-state cell driving Bootstrap: Needed, then
// InProgress while one goroutine owns the join, then Done.
type bootstrapState int

const (
	stateNeeded bootstrapState = iota
	stateInProgress
	stateDone
)

func (s bootstrapState) String() string {
	switch s {
	case stateNeeded:
		return "Needed"
	case stateInProgress:
		return "InProgress"
	case stateDone:
		return "Done"
	default:
		return "invalid"
	}
}

// acquireBootstrapOwnership implements the two-step state acquisition: (a)
// if Done, transition to Needed — a fresh caller asking to re-bootstrap a
// completed instance; (b) then, atomically: wait out any InProgress
// bootstrap, then either report its result (if it finished to Done while we
// waited) or become the owner (Needed -> InProgress). Both steps run under
// the same condition-variable lock, so they are atomic with respect to
// every other caller; a goroutine only releases the lock while blocked in
// Wait.
//
// A single compare-and-set is not enough here: CAS can either wait for Done
// or force Needed, not both, because "is it Done" and "is it InProgress"
// need different reactions and the cell must be able to be re-armed after
// Done, which calls for a re-waitable sync.Cond rather than a one-shot
// closed channel.
func (in *Instance) acquireBootstrapOwnership() (owner bool, result bool) {
	in.bootstrapMu.Lock()
	defer in.bootstrapMu.Unlock()

	if in.bootstrapState == stateDone {
		in.bootstrapState = stateNeeded
	}
	for in.bootstrapState == stateInProgress {
		in.bootstrapCond.Wait()
	}
	if in.bootstrapState == stateDone {
		return false, true
	}
	in.bootstrapState = stateInProgress
	return true, false
}

// finishBootstrap transitions the cell out of InProgress and wakes any
// waiters.
func (in *Instance) finishBootstrap(success bool, restorePort *uint16) {
	in.bootstrapMu.Lock()
	if success {
		in.bootstrapState = stateDone
	} else {
		in.setPublicPort(restorePort)
		in.bootstrapState = stateNeeded
	}
	in.bootstrapCond.Broadcast()
	in.bootstrapMu.Unlock()
}

// Bootstrap safely joins the network from initialPeer.
// It is idempotent with respect to concurrent callers and returns true
// iff the instance is in state Done when it returns.
func (in *Instance) Bootstrap(initialPeer Peer) (result bool) {
	owner, done := in.acquireBootstrapOwnership()
	if !owner {
		return done
	}

	savedPort := in.publicPortValue()

	// Any unexpected panic between becoming the owner and finishing must
	// still roll the cell back to Needed and restore the port.
	defer func() {
		if r := recover(); r != nil {
			in.finishBootstrap(false, savedPort)
			panic(r)
		}
	}()

	announcedPort := in.publicPortValue()
	if announcedPort != nil {
		// initialPeer pings us back on the announced port. This runs
		// alongside the plain ping below and is never joined: a dead
		// reachability probe must not block bootstrap from completing.
		go in.probeSelfReachability(initialPeer, *announcedPort)
	}

	ok := sendRequestSync(in.transport, Request{Ping: &PingRequest{}}, initialPeer,
		func() bool { return false },
		func(resp Response) bool {
			in.table.UnsafeInsertPeer(resp.From)
			in.PeerLookup(in.Self())
			in.fillFarHalf()
			return true
		},
	)
	if !ok {
		in.finishBootstrap(false, savedPort)
		in.logBootstrapOutcome(false)
		return false
	}

	in.finishBootstrap(true, nil)
	in.logBootstrapOutcome(true)
	return true
}

// probeSelfReachability runs the announced-port ping: initialPeer is asked
// to Pong back to our announced port instead of the transport source port.
// Failure clears the public port — the instance remains usable as a
// non-reachable peer.
func (in *Instance) probeSelfReachability(initialPeer Peer, port uint16) {
	p := port
	ok := sendRequestSync(in.transport, Request{Ping: &PingRequest{ReturnPort: &p}}, initialPeer,
		func() bool { return false },
		func(Response) bool { return true },
	)
	if !ok {
		in.clearPublicPort()
		in.logSelfReachabilityFailed()
	}
}

// fillFarHalf generates random PeerIDs whose bit 0 differs from our own
// until it finds one, then performs a lookup on it — populating the half
// of the identifier space the self-lookup alone would under-represent.
func (in *Instance) fillFarHalf() {
	self := in.Self()
	for {
		id := in.rand.RandomPeerID()
		if TestBit(id, 0) != TestBit(self, 0) {
			in.PeerLookup(id)
			return
		}
	}
}
