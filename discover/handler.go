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

// bootstrapDone reports whether the state cell currently reads Done,
// without taking ownership of it the way acquireBootstrapOwnership does.
func (in *Instance) bootstrapDone() bool {
	in.bootstrapMu.Lock()
	defer in.bootstrapMu.Unlock()
	return in.bootstrapState == stateDone
}

// HandleFindNode implements the FindNode admission rules and reply.
// p is the transport-observed source of the request.
func (in *Instance) HandleFindNode(rpcID RpcID, req FindNodeRequest, p Peer) (SignedResponse, error) {
	in.logFindNodeHandled(p, req.PeerID)

	var candidate Node
	haveCandidate := false
	if req.PublicPort != nil {
		c := Node{ID: req.PeerID, Peer: Peer{IP: p.IP, Port: *req.PublicPort}}
		if err := validateCandidate(c, in.Self()); err == nil {
			candidate = c
			haveCandidate = true
		}
	}

	switch {
	case !in.bootstrapDone():
		// Accepting inserts before bootstrap completes would let an
		// attacker pre-fill the table; leave it untouched.

	case haveCandidate && TestBit(req.PeerID, 0) == TestBit(in.Self(), 0):
		// Same half of the network as us: inbound traffic from this half
		// cannot influence our home neighborhood beyond a liveness nudge.
		in.table.ClearTimeoutPeer(req.PeerID)

	case haveCandidate:
		result := in.table.InsertPeer(candidate)
		if in.metrics != nil {
			if result.Accepted {
				in.metrics.AdmitAccepted.Inc(1)
			}
		}
		if !result.Accepted {
			in.logAdmitRejected(candidate, result.IPLimited)
			if !result.IPLimited {
				in.table.CacheReplacement(candidate)
				if !result.Rejected.ID.IsZero() {
					go in.raceOldVsNew(result.Rejected, candidate)
				}
			}
		}
	}

	nodes := in.table.FindClosest(in.cfg.K, req.Target)
	wireNodes := make([]WireNode, 0, len(nodes))
	for _, n := range nodes {
		wn, err := NodeToWire(n)
		if err != nil {
			continue
		}
		wireNodes = append(wireNodes, wn)
	}

	resp := ResponsePayload{ReturnNodes: &ReturnNodesMsg{Nodes: wireNodes}}
	return in.signResponse(rpcID, Request{FindNode: &req}, resp)
}

// raceOldVsNew resolves a bucket-full FindNode admission by preferring the
// incumbent: an impersonator that merely forwards packets cannot displace
// the genuine node just by being seen first.
func (in *Instance) raceOldVsNew(oldNode, newNode Node) {
	oldAlive := sendRequestSync(in.transport, Request{Ping: &PingRequest{}}, oldNode.Peer,
		func() bool { return false },
		func(Response) bool { return true },
	)
	if oldAlive {
		return
	}
	newAlive := sendRequestSync(in.transport, Request{Ping: &PingRequest{}}, newNode.Peer,
		func() bool { return false },
		func(Response) bool { return true },
	)
	if newAlive {
		in.table.UnsafeInsertPeer(newNode)
	}
}

// HandlePing implements the Ping contract: always Pong, redirected to
// ReturnPort when the caller is running the self-reachability probe.
func (in *Instance) HandlePing(rpcID RpcID, req PingRequest, p Peer) (SignedResponse, error) {
	in.logPingHandled(p)
	return in.signResponse(rpcID, Request{Ping: &req}, ResponsePayload{Pong: &struct{}{}})
}
