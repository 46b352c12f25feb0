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

// This file defines the wire message shapes of the discovery protocol.
// Encoding itself (CBOR) and request/response correlation are an external
// collaborator's job; discover.Transport is the boundary. wire.go only
// fixes the conceptual layout so both sides of that boundary agree on it,
// and provides the CBOR codec used by the reference udp.go transport.
package discover

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/fxamacker/cbor/v2"
)

// RpcID is a 160-bit request identifier.
type RpcID [20]byte

// Nonce is an 8-byte value reserved for extended protocols; the core
// operations in this module never generate or consume one.
type Nonce [8]byte

// Request is the sum type of outbound RPCs.
type Request struct {
	Ping     *PingRequest     `cbor:"1,keyasint,omitempty"`
	FindNode *FindNodeRequest `cbor:"2,keyasint,omitempty"`
}

// PingRequest optionally carries the port the responder should direct its
// Pong to instead of the transport source port — the self-reachability
// probe.
type PingRequest struct {
	ReturnPort *uint16 `cbor:"1,keyasint,omitempty"`
}

// FindNodeRequest asks for the K nodes closest to Target known to the
// responder. PublicPort is set iff the requester has an announced port.
type FindNodeRequest struct {
	PeerID     PeerID  `cbor:"1,keyasint"`
	PublicPort *uint16 `cbor:"2,keyasint,omitempty"`
	Target     PeerID  `cbor:"3,keyasint"`
}

// ResponsePayload is the sum type of inbound RPC payloads.
type ResponsePayload struct {
	Pong        *struct{}       `cbor:"1,keyasint,omitempty"`
	ReturnNodes *ReturnNodesMsg `cbor:"2,keyasint,omitempty"`
}

// ReturnNodesMsg is the FindNode reply payload.
type ReturnNodesMsg struct {
	Nodes []WireNode `cbor:"1,keyasint"`
}

// SignedResponse is the full signed envelope returned for every request:
// payload is the canonical encoding of (rpcId, request, response); the
// signature is Ed25519 over that encoding under the responder's long-term
// key.
type SignedResponse struct {
	RpcID     RpcID           `cbor:"1,keyasint"`
	PublicKey []byte          `cbor:"2,keyasint"`
	Signature []byte          `cbor:"3,keyasint"`
	Payload   ResponsePayload `cbor:"4,keyasint"`
}

// WireNode is the 3-tuple encoding of a Node: (peerId, htonl(addr), port).
type WireNode struct {
	ID   PeerID
	Addr uint32
	Port uint16
}

// ToNode converts a WireNode back into a Node.
func (w WireNode) ToNode() Node {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, w.Addr)
	return Node{ID: w.ID, Peer: Peer{IP: ip, Port: w.Port}}
}

// NodeToWire encodes a Node as its wire 3-tuple. Returns an error if the
// node's address is not an IPv4 address; routability is not checked.
func NodeToWire(n Node) (WireNode, error) {
	ip4 := n.Peer.IP.To4()
	if ip4 == nil {
		return WireNode{}, fmt.Errorf("discover: node %s has no IPv4 address", n)
	}
	return WireNode{ID: n.ID, Addr: binary.BigEndian.Uint32(ip4), Port: n.Peer.Port}, nil
}

// signingPayload builds the canonical (rpcId, request, response) encoding
// that gets Ed25519-signed
func signingPayload(rpcID RpcID, req Request, payload ResponsePayload) ([]byte, error) {
	return cbor.Marshal(struct {
		RpcID   RpcID           `cbor:"1,keyasint"`
		Request Request         `cbor:"2,keyasint"`
		Payload ResponsePayload `cbor:"3,keyasint"`
	}{rpcID, req, payload})
}

func encodeRequest(req Request) ([]byte, error) {
	return cbor.Marshal(req)
}

func decodeRequest(b []byte) (Request, error) {
	var req Request
	err := cbor.Unmarshal(b, &req)
	return req, err
}

func encodeSignedResponse(r SignedResponse) ([]byte, error) {
	return cbor.Marshal(r)
}

func decodeSignedResponse(b []byte) (SignedResponse, error) {
	var r SignedResponse
	err := cbor.Unmarshal(b, &r)
	return r, err
}
