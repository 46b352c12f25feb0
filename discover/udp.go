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
	"net"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/golang-lru/simplelru"
	"golang.org/x/crypto/ed25519"

	dcrypto "github.com/input-output-hk/peer-discovery/crypto"
)

// maxPendingReplies bounds the correlation table against an adversary that
// sends requests and never collects the replies it provoked, which would
// otherwise leak one pending entry per packet.
const maxPendingReplies = 4096

// envelope is the single wire-level packet shape: exactly one of Req or
// Resp is set, correlated by RpcID.
type envelope struct {
	RpcID RpcID           `cbor:"1,keyasint"`
	Req   *Request        `cbor:"2,keyasint,omitempty"`
	Resp  *SignedResponse `cbor:"3,keyasint,omitempty"`
}

// requestHandler is the subset of *Instance the transport calls back into
// for inbound requests; kept as an interface so the transport has no
// import-cycle dependency on Instance.
type requestHandler interface {
	HandleFindNode(rpcID RpcID, req FindNodeRequest, p Peer) (SignedResponse, error)
	HandlePing(rpcID RpcID, req PingRequest, p Peer) (SignedResponse, error)
}

type pendingReply struct {
	origReq   Request
	peerPort  uint16
	timer     *time.Timer
	onTimeout func()
	onSuccess func(Response)
}

// UDPTransport is the reference Transport implementation: a single UDP
// socket, a bounded correlation table for replies in flight, and a read
// loop that authenticates every inbound SignedResponse before handing it
// to the waiting caller.
type UDPTransport struct {
	conn    net.PacketConn
	priv    ed25519.PrivateKey
	rand    RandomSource
	timeout time.Duration

	mu      sync.Mutex
	pending *simplelru.LRU
	handler requestHandler

	closeOnce sync.Once
	closed    chan struct{}
}

// NewUDPTransport wires a UDP socket as a Transport. Call SetHandler before
// traffic starts arriving so inbound requests have somewhere to go.
func NewUDPTransport(conn net.PacketConn, priv ed25519.PrivateKey, rnd RandomSource, timeout time.Duration) *UDPTransport {
	lru, err := simplelru.NewLRU(maxPendingReplies, func(key interface{}, value interface{}) {
		pr := value.(*pendingReply)
		pr.timer.Stop()
		go pr.onTimeout()
	})
	if err != nil {
		panic(err) // only returns an error for a non-positive size, which maxPendingReplies is not
	}
	return &UDPTransport{
		conn:    conn,
		priv:    priv,
		rand:    rnd,
		timeout: timeout,
		pending: lru,
		closed:  make(chan struct{}),
	}
}

// SetHandler registers the inbound-request callback.
func (t *UDPTransport) SetHandler(h requestHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// Serve runs the read loop until the socket is closed. Run it in its own
// goroutine.
func (t *UDPTransport) Serve() error {
	buf := make([]byte, 2048)
	for {
		n, addr, err := t.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-t.closed:
				return nil
			default:
				return err
			}
		}
		pkt := append([]byte(nil), buf[:n]...)
		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			continue
		}
		go t.handlePacket(pkt, udpAddr)
	}
}

// Close shuts the socket down; Serve returns. Close is idempotent: a
// second call returns ErrClosed instead of closing an already-closed
// channel.
func (t *UDPTransport) Close() error {
	err := error(ErrClosed)
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.conn.Close()
	})
	return err
}

func (t *UDPTransport) handlePacket(raw []byte, from *net.UDPAddr) {
	var env envelope
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return
	}
	switch {
	case env.Req != nil:
		t.handleRequest(env.RpcID, *env.Req, from)
	case env.Resp != nil:
		t.handleResponse(env.RpcID, *env.Resp, from)
	}
}

func (t *UDPTransport) handleRequest(rpcID RpcID, req Request, from *net.UDPAddr) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		return
	}

	fromPeer := Peer{IP: from.IP, Port: uint16(from.Port)}
	var (
		resp SignedResponse
		err  error
		dest = fromPeer
	)
	switch {
	case req.Ping != nil:
		resp, err = h.HandlePing(rpcID, *req.Ping, fromPeer)
		if req.Ping.ReturnPort != nil {
			dest.Port = *req.Ping.ReturnPort
		}
	case req.FindNode != nil:
		resp, err = h.HandleFindNode(rpcID, *req.FindNode, fromPeer)
	default:
		return
	}
	if err != nil {
		return
	}

	out, err := cbor.Marshal(envelope{RpcID: rpcID, Resp: &resp})
	if err != nil {
		return
	}
	t.SendTo(dest, out)
}

func (t *UDPTransport) handleResponse(rpcID RpcID, resp SignedResponse, from *net.UDPAddr) {
	t.mu.Lock()
	v, ok := t.pending.Get(rpcID)
	if ok {
		t.pending.Remove(rpcID)
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	pr := v.(*pendingReply)
	pr.timer.Stop()

	msg, err := signingPayload(rpcID, pr.origReq, resp.Payload)
	if err != nil {
		go pr.onTimeout()
		return
	}
	pub := ed25519.PublicKey(resp.PublicKey)
	if err := dcrypto.Verify(pub, msg, resp.Signature); err != nil {
		go pr.onTimeout()
		return
	}
	id := dcrypto.DerivePeerID(pub)
	node := Node{ID: PeerID(id), Peer: Peer{IP: from.IP, Port: uint16(from.Port)}}
	go pr.onSuccess(Response{From: node, Payload: resp.Payload})
}

// SendRequest implements Transport.
func (t *UDPTransport) SendRequest(req Request, peer Peer, onTimeout func(), onSuccess func(Response)) {
	rpcID := t.rand.RandomRpcID()
	pr := &pendingReply{origReq: req, peerPort: peer.Port, onTimeout: onTimeout, onSuccess: onSuccess}
	pr.timer = time.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		_, ok := t.pending.Get(rpcID)
		if ok {
			t.pending.Remove(rpcID)
		}
		t.mu.Unlock()
		if ok {
			onTimeout()
		}
	})

	t.mu.Lock()
	t.pending.Add(rpcID, pr)
	t.mu.Unlock()

	out, err := cbor.Marshal(envelope{RpcID: rpcID, Req: &req})
	if err != nil {
		pr.timer.Stop()
		t.mu.Lock()
		t.pending.Remove(rpcID)
		t.mu.Unlock()
		go onTimeout()
		return
	}
	t.SendTo(peer, out)
}

// SendTo implements Transport.
func (t *UDPTransport) SendTo(peer Peer, packet []byte) {
	t.conn.WriteTo(packet, peer.UDPAddr())
}
