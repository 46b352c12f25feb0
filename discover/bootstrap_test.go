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
	"github.com/stretchr/testify/require"
)

func TestBootstrapStateStringer(t *testing.T) {
	assert.Equal(t, "Needed", stateNeeded.String())
	assert.Equal(t, "InProgress", stateInProgress.String())
	assert.Equal(t, "Done", stateDone.String())
	assert.Equal(t, "invalid", bootstrapState(99).String())
}

func TestAcquireBootstrapOwnershipFreshInstance(t *testing.T) {
	var self PeerID
	in := newTestInstance(testConfig(), self, newFakeTransport(), nil)

	owner, done := in.acquireBootstrapOwnership()
	assert.True(t, owner)
	assert.False(t, done)
	assert.Equal(t, stateInProgress, in.bootstrapState)
}

func TestAcquireBootstrapOwnershipReArmsAfterDone(t *testing.T) {
	var self PeerID
	in := newTestInstance(testConfig(), self, newFakeTransport(), nil)
	in.bootstrapState = stateDone

	owner, done := in.acquireBootstrapOwnership()
	assert.True(t, owner)
	assert.False(t, done)
}

func TestAcquireBootstrapOwnershipWaitsForInProgressThenReportsDone(t *testing.T) {
	var self PeerID
	in := newTestInstance(testConfig(), self, newFakeTransport(), nil)
	in.bootstrapState = stateInProgress

	type outcome struct{ owner, done bool }
	waiterDone := make(chan outcome, 1)
	go func() {
		owner, done := in.acquireBootstrapOwnership()
		waiterDone <- outcome{owner, done}
	}()

	// Let the waiter reach Wait while the cell still reads InProgress; a
	// caller arriving only after Done would re-arm the cell and become owner.
	time.Sleep(50 * time.Millisecond)
	in.finishBootstrap(true, nil)
	got := <-waiterDone
	assert.False(t, got.owner)
	assert.True(t, got.done)
}

func TestBootstrapSucceedsAndReachesDone(t *testing.T) {
	var self PeerID // bit0 == 0
	var farID PeerID
	farID[0] = 0x80 // bit0 == 1, opposite of self - satisfies fillFarHalf
	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{farID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	seed := Peer{IP: nodeAt(50).Peer.IP, Port: 30350}
	tr.On(seed, true, Response{From: nodeAt(50), Payload: ResponsePayload{Pong: &struct{}{}}})

	ok := in.Bootstrap(seed)
	assert.True(t, ok)
	assert.True(t, in.bootstrapDone())
	assert.True(t, in.table.Contains(nodeAt(50).ID))
}

func TestBootstrapFailsWhenSeedUnreachable(t *testing.T) {
	var self PeerID
	tr := newFakeTransport() // seed left unscripted: always times out
	in := newTestInstance(testConfig(), self, tr, nil)

	seed := Peer{IP: nodeAt(51).Peer.IP, Port: 30351}
	ok := in.Bootstrap(seed)
	assert.False(t, ok)
	assert.False(t, in.bootstrapDone())
}

func TestBootstrapIsIdempotentForConcurrentCallers(t *testing.T) {
	var self PeerID // bit0 == 0
	var farID PeerID
	farID[0] = 0x80 // bit0 == 1, opposite of self - satisfies fillFarHalf
	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{farID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	seed := Peer{IP: nodeAt(52).Peer.IP, Port: 30352}
	tr.On(seed, true, Response{From: nodeAt(52), Payload: ResponsePayload{Pong: &struct{}{}}})

	results := make(chan bool, 2)
	go func() { results <- in.Bootstrap(seed) }()
	go func() { results <- in.Bootstrap(seed) }()

	r1, r2 := <-results, <-results
	assert.True(t, r1)
	assert.True(t, r2)
}

func TestProbeSelfReachabilityClearsPortOnFailure(t *testing.T) {
	var self PeerID
	tr := newFakeTransport() // unscripted: times out
	port := uint16(30303)
	in := newTestInstance(testConfig(), self, tr, nil)
	in.setPublicPort(&port)

	in.probeSelfReachability(Peer{IP: nodeAt(1).Peer.IP, Port: 1}, port)
	assert.Nil(t, in.publicPortValue())
}

func TestProbeSelfReachabilityKeepsPortOnSuccess(t *testing.T) {
	var self PeerID
	tr := newFakeTransport()
	port := uint16(30303)
	peer := Peer{IP: nodeAt(1).Peer.IP, Port: 1}
	tr.On(peer, true, Response{Payload: ResponsePayload{Pong: &struct{}{}}})

	in := newTestInstance(testConfig(), self, tr, nil)
	in.setPublicPort(&port)

	in.probeSelfReachability(peer, port)
	require.NotNil(t, in.publicPortValue())
	assert.Equal(t, port, *in.publicPortValue())
}

func TestFillFarHalfLooksUpOppositeHalfID(t *testing.T) {
	var self PeerID // bit0 == 0
	oppositeID := nodeAt(1).ID
	// make sure bit0 is actually the opposite of self's (0) by construction
	if !TestBit(oppositeID, 0) {
		oppositeID[0] |= 0x80
	}

	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{oppositeID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	// No seeds in the table: PeerLookup has nothing to query and returns
	// immediately. fillFarHalf must still terminate without panicking.
	in.fillFarHalf()
	// The first random id already lies in the opposite half, so it is the
	// one looked up and no further id is drawn.
	assert.Equal(t, 1, rnd.idx)
}
