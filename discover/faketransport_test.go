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
	"sync"

	dcrypto "github.com/input-output-hk/peer-discovery/crypto"
)

// newTestInstance builds an Instance wired to tr and rnd, with a fresh
// Ed25519 identity and its own routing table rooted at self.
func newTestInstance(cfg Config, self PeerID, tr Transport, rnd RandomSource) *Instance {
	_, priv, err := dcrypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return NewInstance(cfg, priv, self, nil, tr, rnd, nil)
}

// fakeTransport is an in-memory Transport double: responses for a given
// peer are scripted ahead of time via On/OnFunc, and every SendRequest
// call is recorded for assertions.
type fakeTransport struct {
	mu    sync.Mutex
	resp  map[string]func(Request) (Response, bool) // keyed by peer.String()
	calls []Request
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{resp: make(map[string]func(Request) (Response, bool))}
}

// On scripts peer to always answer with resp (ok=true) or time out (ok=false).
func (f *fakeTransport) On(peer Peer, ok bool, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resp[peer.String()] = func(Request) (Response, bool) { return resp, ok }
}

// OnFunc scripts peer with a handler that inspects the request.
func (f *fakeTransport) OnFunc(peer Peer, fn func(Request) (Response, bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resp[peer.String()] = fn
}

func (f *fakeTransport) SendRequest(req Request, peer Peer, onTimeout func(), onSuccess func(Response)) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn, ok := f.resp[peer.String()]
	f.mu.Unlock()

	if !ok {
		onTimeout()
		return
	}
	resp, success := fn(req)
	if !success {
		onTimeout()
		return
	}
	onSuccess(resp)
}

func (f *fakeTransport) SendTo(peer Peer, packet []byte) {}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeRandomSource is deterministic: each call cycles through a fixed list
// (or returns the zero value when the list is empty) so lookup/bootstrap tests are
// reproducible without touching crypto/rand.
type fakeRandomSource struct {
	mu      sync.Mutex
	peerIDs []PeerID
	idx     int
}

func (f *fakeRandomSource) RandomPeerID() PeerID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.peerIDs) == 0 {
		return PeerID{}
	}
	id := f.peerIDs[f.idx%len(f.peerIDs)]
	f.idx++
	return id
}

func (f *fakeRandomSource) RandomRpcID() RpcID {
	var id RpcID
	id[0] = 1
	return id
}
