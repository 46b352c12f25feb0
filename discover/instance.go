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
	"sync/atomic"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/sync/singleflight"

	dcrypto "github.com/input-output-hk/peer-discovery/crypto"
)

// Instance ties the routing table, bootstrap state, public port and
// transport together. bootstrap.go, lookup.go,
// handler.go and maintenance.go are all methods on *Instance.
type Instance struct {
	cfg       Config
	table     *Table
	transport Transport
	rand      RandomSource
	priv      ed25519.PrivateKey
	metrics   *Metrics

	bootstrapMu    sync.Mutex
	bootstrapCond  *sync.Cond
	bootstrapState bootstrapState

	// pingGroup dedupes concurrent replacement-cache liveness probes aimed
	// at the same candidate, issued from maintenance running on several
	// buckets at once.
	pingGroup singleflight.Group

	// publicPort holds the announced port + 1, biased so the zero value
	// means "no port requested"; 0 after bias means none, and any other
	// value v means port v-1. Accessed via atomic.Int32 so handler.go and
	// bootstrap.go can read/clear it without taking the table lock.
	publicPort atomic.Int32
}

// NewInstance constructs a discovery Instance for owner id. publicPort is
// the initially-requested announced port, or nil if none was requested.
func NewInstance(cfg Config, priv ed25519.PrivateKey, id PeerID, publicPort *uint16, tr Transport, rnd RandomSource, m *Metrics) *Instance {
	in := &Instance{
		cfg:       cfg.normalize(),
		table:     NewTable(cfg, id),
		transport: tr,
		rand:      rnd,
		priv:      priv,
		metrics:   m,
	}
	in.bootstrapCond = sync.NewCond(&in.bootstrapMu)
	in.bootstrapState = stateNeeded
	in.setPublicPort(publicPort)
	return in
}

// Self returns the instance's own PeerID.
func (in *Instance) Self() PeerID { return in.table.Self() }

// Table exposes the routing table for inspection (tests, metrics).
func (in *Instance) Table() *Table { return in.table }

func (in *Instance) setPublicPort(p *uint16) {
	if p == nil {
		in.publicPort.Store(0)
		return
	}
	in.publicPort.Store(int32(*p) + 1)
}

// publicPortValue returns the currently announced port, or nil if none.
func (in *Instance) publicPortValue() *uint16 {
	v := in.publicPort.Load()
	if v == 0 {
		return nil
	}
	port := uint16(v - 1)
	return &port
}

// clearPublicPort clears the announced port.
func (in *Instance) clearPublicPort() {
	in.publicPort.Store(0)
}

// signResponse builds and signs the canonical (rpcId, request, response)
// envelope returned to an inbound request.
func (in *Instance) signResponse(rpcID RpcID, req Request, payload ResponsePayload) (SignedResponse, error) {
	msg, err := signingPayload(rpcID, req, payload)
	if err != nil {
		return SignedResponse{}, err
	}
	sig := dcrypto.Sign(in.priv, msg)
	return SignedResponse{
		RpcID:     rpcID,
		PublicKey: in.priv.Public().(ed25519.PublicKey),
		Signature: sig,
		Payload:   payload,
	}, nil
}
