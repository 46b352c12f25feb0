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
	"fmt"
	"net"
)

// Peer is a transport-level address: an IPv4 host and a UDP port.
type Peer struct {
	IP   net.IP
	Port uint16
}

func (p Peer) String() string {
	return fmt.Sprintf("%s:%d", p.IP, p.Port)
}

// UDPAddr converts p to a *net.UDPAddr for use with the transport.
func (p Peer) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: p.IP, Port: int(p.Port)}
}

// Node is a discovery peer: its identifier and its last known address.
// Two Nodes are equal iff their PeerIDs are equal. Inserting a Node whose
// PeerID is already in the table overwrites the stored Peer in place (see
// Table.InsertPeer); the old address is not probed before it is replaced.
type Node struct {
	ID   PeerID
	Peer Peer
}

func (n Node) String() string {
	return fmt.Sprintf("%s@%s", n.ID, n.Peer)
}

// NodeInfo is a Node plus the routing table's liveness bookkeeping: a
// non-negative counter of consecutive RPC timeouts, starting at 0.
type NodeInfo struct {
	Node
	Timeouts int
}
