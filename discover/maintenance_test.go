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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeSuspiciousClearsTimeoutOnReply(t *testing.T) {
	var self PeerID
	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{nodeAt(9).ID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	n := nodeAt(1)
	require.True(t, in.table.InsertPeer(n).Accepted)
	in.table.TimeoutPeer(n.ID)
	tr.On(n.Peer, true, Response{From: n, Payload: ResponsePayload{ReturnNodes: &ReturnNodesMsg{}}})

	leaf := in.table.locate(n.ID)
	in.probeSuspicious(leaf.bucket, NodeInfo{Node: n, Timeouts: 1})

	snap := in.table.snapshotBuckets()
	for _, s := range snap {
		for _, e := range s.entries {
			if e.ID == n.ID {
				assert.Equal(t, 0, e.Timeouts)
			}
		}
	}
}

func TestProbeSuspiciousEvictsAfterMaxTimeouts(t *testing.T) {
	cfg := Config{Alpha: 3, K: 4, B: 2, MaxTimeouts: 2}.normalize()
	var self PeerID
	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{nodeAt(9).ID}}
	in := newTestInstance(cfg, self, tr, rnd)

	dead := nodeAt(1)
	require.True(t, in.table.InsertPeer(dead).Accepted)

	replacement := nodeAt(2)
	in.table.CacheReplacement(replacement)
	tr.On(replacement.Peer, true, Response{From: replacement, Payload: ResponsePayload{ReturnNodes: &ReturnNodesMsg{}}})
	// dead.Peer left unscripted: every probe against it times out.

	leaf := in.table.locate(dead.ID)
	in.probeSuspicious(leaf.bucket, NodeInfo{Node: dead, Timeouts: cfg.MaxTimeouts - 1})

	assert.False(t, in.table.Contains(dead.ID))
	assert.True(t, in.table.Contains(replacement.ID))
}

func TestAttemptEvictionNoOpWhenCacheAllDead(t *testing.T) {
	var self PeerID
	tr := newFakeTransport() // nothing scripted: every probe times out
	rnd := &fakeRandomSource{peerIDs: []PeerID{nodeAt(9).ID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	dead := nodeAt(1)
	require.True(t, in.table.InsertPeer(dead).Accepted)
	in.table.CacheReplacement(nodeAt(2))

	leaf := in.table.locate(dead.ID)
	in.attemptEviction(leaf.bucket, dead.ID)

	assert.True(t, in.table.Contains(dead.ID))
	assert.False(t, in.table.Contains(nodeAt(2).ID))
}

func TestProbeCacheCandidateDedupesConcurrentProbes(t *testing.T) {
	var self PeerID
	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{nodeAt(9).ID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	cand := nodeAt(3)
	tr.On(cand.Peer, true, Response{From: cand, Payload: ResponsePayload{ReturnNodes: &ReturnNodesMsg{}}})

	results := make(chan bool, 2)
	go func() { results <- in.probeCacheCandidate(cand) }()
	go func() { results <- in.probeCacheCandidate(cand) }()

	assert.True(t, <-results)
	assert.True(t, <-results)
}

func TestRandomFindNodeCarriesSelfAndTarget(t *testing.T) {
	var self PeerID
	self[0] = 0xaa
	target := nodeAt(7).ID
	in := newTestInstance(testConfig(), self, newFakeTransport(), &fakeRandomSource{peerIDs: []PeerID{target}})

	req := in.randomFindNode()
	require.NotNil(t, req.FindNode)
	assert.Equal(t, self, req.FindNode.PeerID)
	assert.Equal(t, target, req.FindNode.Target)
}

func TestRunMaintenanceSweepsAllBucketsWithoutError(t *testing.T) {
	var self PeerID
	tr := newFakeTransport()
	rnd := &fakeRandomSource{peerIDs: []PeerID{nodeAt(9).ID}}
	in := newTestInstance(testConfig(), self, tr, rnd)

	n := nodeAt(1)
	require.True(t, in.table.InsertPeer(n).Accepted)
	in.table.TimeoutPeer(n.ID)
	tr.On(n.Peer, true, Response{From: n, Payload: ResponsePayload{ReturnNodes: &ReturnNodesMsg{}}})

	err := in.RunMaintenance(context.Background())
	require.NoError(t, err)
}
