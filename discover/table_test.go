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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Alpha: 3, K: 4, B: 2, MaxTimeouts: 3}.normalize()
}

// nodeAt builds a distinct Node for index i: the PeerID's last byte is i,
// and the IP address is placed in its own /24 (third octet = i) so that
// tests unrelated to IP-diversity admission never trip bucketIPLimit.
func nodeAt(i byte) Node {
	var id PeerID
	id[peerIDBytes-1] = i
	return Node{ID: id, Peer: Peer{IP: net.IPv4(10, 0, i, 1), Port: 30303 + uint16(i)}}
}

func TestInsertPeerAcceptsUntilFull(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)

	for i := byte(1); i <= byte(cfg.K); i++ {
		res := tbl.InsertPeer(nodeAt(i))
		assert.True(t, res.Accepted, "entry %d should be accepted while bucket has room", i)
	}
	assert.Equal(t, cfg.K, tbl.Len())
}

func TestInsertPeerIdempotentOnSameID(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)
	n := nodeAt(1)

	require.True(t, tbl.InsertPeer(n).Accepted)
	n.Peer.Port = 9999
	require.True(t, tbl.InsertPeer(n).Accepted)
	assert.Equal(t, 1, tbl.Len())
}

func TestInsertPeerSplitsHomeBranchBeyondK(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)

	// Insert more than K nodes that all share self's bit-0 value (home
	// branch), which must split rather than reject.
	for i := byte(1); i <= byte(cfg.K)+2; i++ {
		n := nodeAt(i)
		res := tbl.InsertPeer(n)
		assert.True(t, res.Accepted, "entry %d in home branch should never be rejected", i)
	}
	assert.Equal(t, cfg.K+2, tbl.Len())
}

func TestInsertPeerRejectsBeyondBOnNonHomeBranch(t *testing.T) {
	cfg := Config{Alpha: 3, K: 2, B: 0, MaxTimeouts: 3}.normalize()
	var self PeerID
	// Flip self's bit 0 so all generated nodes land on the non-home branch.
	self[0] = 0x80

	tbl := NewTable(cfg, self)
	var last InsertResult
	for i := byte(1); i <= 5; i++ {
		n := nodeAt(i) // bit 0 of nodeAt(i).ID is 0, opposite of self
		last = tbl.InsertPeer(n)
	}
	assert.False(t, last.Accepted)
	assert.False(t, last.IPLimited)
}

func TestInsertPeerIPLimited(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)

	base := nodeAt(1)
	ip := net.IPv4(203, 0, 113, 1)
	for i := 0; i < bucketIPLimit; i++ {
		n := base
		n.ID[peerIDBytes-1] = byte(i + 1)
		n.Peer.IP = ip
		require.True(t, tbl.InsertPeer(n).Accepted)
	}
	over := base
	over.ID[peerIDBytes-1] = byte(bucketIPLimit + 10)
	over.Peer.IP = ip
	res := tbl.InsertPeer(over)
	assert.False(t, res.Accepted)
	assert.True(t, res.IPLimited)
}

func TestTimeoutAndClearTimeoutPeer(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)
	n := nodeAt(1)
	require.True(t, tbl.InsertPeer(n).Accepted)

	tbl.TimeoutPeer(n.ID)
	tbl.TimeoutPeer(n.ID)
	snap := tbl.snapshotBuckets()
	found := false
	for _, s := range snap {
		for _, e := range s.entries {
			if e.ID == n.ID {
				found = true
				assert.Equal(t, 2, e.Timeouts)
			}
		}
	}
	require.True(t, found)

	tbl.ClearTimeoutPeer(n.ID)
	snap = tbl.snapshotBuckets()
	for _, s := range snap {
		for _, e := range s.entries {
			if e.ID == n.ID {
				assert.Equal(t, 0, e.Timeouts)
			}
		}
	}
}

func TestContains(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)
	n := nodeAt(1)
	assert.False(t, tbl.Contains(n.ID))
	require.True(t, tbl.InsertPeer(n).Accepted)
	assert.True(t, tbl.Contains(n.ID))
}

func TestSnapshotBucketsEntriesMatchInsertedNodes(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)

	inserted := []Node{nodeAt(1), nodeAt(2), nodeAt(3)}
	for _, n := range inserted {
		require.True(t, tbl.InsertPeer(n).Accepted)
	}

	// snapshotBuckets is read by maintenance.go; go-cmp catches any drift
	// in the entries it hands out (wrong Peer, stray Timeouts) that a
	// presence-only loop wouldn't.
	var gotEntries []Node
	for _, s := range tbl.snapshotBuckets() {
		for _, e := range s.entries {
			gotEntries = append(gotEntries, e.Node)
		}
	}

	sortNodes := func(ns []Node) []Node {
		out := append([]Node(nil), ns...)
		sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
		return out
	}

	if diff := cmp.Diff(sortNodes(inserted), sortNodes(gotEntries)); diff != "" {
		t.Errorf("snapshotBuckets() entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFindClosestOrdersByDistance(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)
	for i := byte(1); i <= byte(cfg.K); i++ {
		require.True(t, tbl.InsertPeer(nodeAt(i)).Accepted)
	}

	var target PeerID
	closest := tbl.FindClosest(2, target)
	require.Len(t, closest, 2)
	assert.True(t, distCmp(target, closest[0].ID, closest[1].ID) <= 0)
}

func TestCacheReplacementAndEvictAndReplace(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)

	dead := nodeAt(1)
	require.True(t, tbl.InsertPeer(dead).Accepted)

	replacement := nodeAt(2)
	tbl.CacheReplacement(replacement)

	leaf := tbl.locate(dead.ID)
	cache := tbl.BucketCache(leaf.bucket)
	require.Len(t, cache, 1)
	assert.Equal(t, replacement.ID, cache[0].ID)

	tbl.EvictAndReplace(leaf.bucket, dead.ID, replacement, nil)
	assert.False(t, tbl.Contains(dead.ID))
	assert.True(t, tbl.Contains(replacement.ID))
}

func TestEvictAndReplaceNoOpIfDeadGone(t *testing.T) {
	cfg := testConfig()
	var self PeerID
	tbl := NewTable(cfg, self)
	n := nodeAt(1)
	require.True(t, tbl.InsertPeer(n).Accepted)
	leaf := tbl.locate(n.ID)

	var missing PeerID
	missing[0] = 0xff
	tbl.EvictAndReplace(leaf.bucket, missing, nodeAt(2), nil)
	assert.True(t, tbl.Contains(n.ID))
	assert.False(t, tbl.Contains(nodeAt(2).ID))
}
