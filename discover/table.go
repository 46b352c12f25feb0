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
	"sync"

	"github.com/input-output-hk/peer-discovery/p2p/distip"
)

const (
	bucketIPLimit, bucketSubnet = 2, 24 // at most 2 addresses from the same /24 per bucket
	tableIPLimit, tableSubnet   = 10, 24
)

// bucket is a leaf of the routing tree: up to K NodeInfo entries in
// insertion order, plus a FIFO replacement cache of at most K Nodes that
// attempted to enter this bucket while it was full.
type bucket struct {
	entries []NodeInfo
	cache   []Node
	ips     distip.DistinctNetSet
}

func newBucket() *bucket {
	return &bucket{ips: distip.DistinctNetSet{Subnet: bucketSubnet, Limit: bucketIPLimit}}
}

// treeNode is either a leaf (bucket != nil) or an internal split node with
// two children, branched on the bit at its depth. It is never cyclic and
// never shared beyond its owning Table.
type treeNode struct {
	bucket *bucket
	child  [2]*treeNode
}

func (n *treeNode) isLeaf() bool { return n.bucket != nil }

// Table is the routing table: an owner PeerID and a routing tree of
// K-buckets. All mutation is serialized on mu; operations
// are bounded by B depth and K size and are meant to be brief.
type Table struct {
	mu   sync.Mutex
	cfg  Config
	rtID PeerID
	root *treeNode
	ips  distip.DistinctNetSet // table-wide IP diversity
}

// NewTable creates a routing table for owner id with an empty root bucket.
func NewTable(cfg Config, id PeerID) *Table {
	return &Table{
		cfg:  cfg.normalize(),
		rtID: id,
		root: &treeNode{bucket: newBucket()},
		ips:  distip.DistinctNetSet{Subnet: tableSubnet, Limit: tableIPLimit},
	}
}

// InsertResult is the outcome of InsertPeer: exactly one of Accepted,
// IPLimited or Rejected describes what happened.
type InsertResult struct {
	Accepted  bool
	IPLimited bool
	Rejected  Node // the front-of-bucket (least-recently-refreshed) node; valid iff !Accepted && !IPLimited
}

// InsertPeer attempts to insert n into the table.
//
//  1. If the target bucket has room, append NodeInfo{n, 0}.
//  2. If the bucket is full and the leaf is on the home branch (the path to
//     rtID) OR its depth is below cfg.B, split the bucket on the next bit
//     and recurse.
//  3. Otherwise the insertion is rejected; the caller receives the
//     front-of-bucket node so it can decide whether to evict it.
func (t *Table) InsertPeer(n Node) InsertResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertPeerLocked(t.root, 0, true, n)
}

// UnsafeInsertPeer is InsertPeer but discards a Left (rejected) result,
// for call sites where the decision has already been made elsewhere, e.g.
// after a successful ping proved n live.
func (t *Table) UnsafeInsertPeer(n Node) {
	t.InsertPeer(n)
}

func (t *Table) insertPeerLocked(n *treeNode, depth int, home bool, newNode Node) InsertResult {
	if !n.isLeaf() {
		idx := 0
		if TestBit(newNode.ID, depth) {
			idx = 1
		}
		childHome := home && TestBit(t.rtID, depth) == TestBit(newNode.ID, depth)
		return t.insertPeerLocked(n.child[idx], depth+1, childHome, newNode)
	}

	b := n.bucket
	for i := range b.entries {
		if b.entries[i].ID == newNode.ID {
			b.entries[i].Node = newNode // address may have changed; same identity
			return InsertResult{Accepted: true}
		}
	}

	if len(b.entries) < t.cfg.K {
		if !t.admitIP(b, newNode.Peer.IP) {
			return InsertResult{IPLimited: true}
		}
		b.entries = append(b.entries, NodeInfo{Node: newNode, Timeouts: 0})
		return InsertResult{Accepted: true}
	}

	if home || depth < t.cfg.B {
		t.split(n, depth)
		return t.insertPeerLocked(n, depth, home, newNode)
	}

	return InsertResult{Rejected: b.entries[0].Node}
}

// split redistributes a leaf's bucket entries and cache into two children
// branched on the bit at depth, then converts n into an internal node.
func (t *Table) split(n *treeNode, depth int) {
	old := n.bucket
	left, right := newBucket(), newBucket()
	for _, e := range old.entries {
		dst := left
		if TestBit(e.ID, depth) {
			dst = right
		}
		dst.entries = append(dst.entries, e)
		dst.ips.Add(e.Peer.IP)
	}
	for _, c := range old.cache {
		dst := left
		if TestBit(c.ID, depth) {
			dst = right
		}
		dst.cache = pushCache(dst.cache, c, t.cfg.K)
	}
	n.bucket = nil
	n.child[0] = &treeNode{bucket: left}
	n.child[1] = &treeNode{bucket: right}
}

// admitIP enforces the IP-diversity admission predicate: a peer is
// rejected if adding it would push its /24 over the per-bucket or
// per-table limit, independent of the bit-0/home-branch rule.
func (t *Table) admitIP(b *bucket, ip net.IP) bool {
	if distip.IsLAN(ip) {
		return true
	}
	if !t.ips.Add(ip) {
		return false
	}
	if !b.ips.Add(ip) {
		t.ips.Remove(ip)
		return false
	}
	return true
}

// pushCache appends n to cache, dropping the oldest entry once the cache
// holds max entries.
func pushCache(cache []Node, n Node, max int) []Node {
	for _, c := range cache {
		if c.ID == n.ID {
			return cache
		}
	}
	cache = append(cache, n)
	if len(cache) > max {
		cache = cache[len(cache)-max:]
	}
	return cache
}

// CacheReplacement appends n to the replacement cache of the leaf bucket
// n would have entered, bounded to K entries. Called by
// handler.go when an insertion is rejected.
func (t *Table) CacheReplacement(n Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	leaf := t.locate(n.ID)
	leaf.bucket.cache = pushCache(leaf.bucket.cache, n, t.cfg.K)
}

// locate walks the tree to the leaf that id's bits select.
func (t *Table) locate(id PeerID) *treeNode {
	n := t.root
	depth := 0
	for !n.isLeaf() {
		idx := 0
		if TestBit(id, depth) {
			idx = 1
		}
		n = n.child[idx]
		depth++
	}
	return n
}

// FindClosest returns up to count nodes with smallest XOR distance to
// target, deterministically ordered.
func (t *Table) FindClosest(count int, target PeerID) []Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	var all []NodeInfo
	t.walk(t.root, func(b *bucket) {
		all = append(all, b.entries...)
	})
	sort.SliceStable(all, func(i, j int) bool {
		return distCmp(target, all[i].ID, all[j].ID) < 0
	})
	if count > len(all) {
		count = len(all)
	}
	out := make([]Node, count)
	for i := 0; i < count; i++ {
		out[i] = all[i].Node
	}
	return out
}

func (t *Table) walk(n *treeNode, fn func(*bucket)) {
	if n.isLeaf() {
		fn(n.bucket)
		return
	}
	t.walk(n.child[0], fn)
	t.walk(n.child[1], fn)
}

// TimeoutPeer increments the timeout counter of id if present; a no-op
// otherwise.
func (t *Table) TimeoutPeer(id PeerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.locate(id).bucket
	for i := range b.entries {
		if b.entries[i].ID == id {
			b.entries[i].Timeouts++
			return
		}
	}
}

// ClearTimeoutPeer resets the timeout counter of id to 0 if present.
func (t *Table) ClearTimeoutPeer(id PeerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.locate(id).bucket
	for i := range b.entries {
		if b.entries[i].ID == id {
			b.entries[i].Timeouts = 0
			return
		}
	}
}

// Contains reports whether id is currently a member of some bucket.
func (t *Table) Contains(id PeerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.locate(id).bucket
	for i := range b.entries {
		if b.entries[i].ID == id {
			return true
		}
	}
	return false
}

// Self returns the table owner's identifier.
func (t *Table) Self() PeerID { return t.rtID }

// Len returns the total number of peers currently in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	t.walk(t.root, func(b *bucket) { n += len(b.entries) })
	return n
}

// BucketCache returns a copy of b's current replacement cache, in FIFO
// order (oldest first), for maintenance.go's lazy eviction probe.
func (t *Table) BucketCache(b *bucket) []Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Node(nil), b.cache...)
}

// EvictAndReplace swaps the dead entry deadID for replacement (fresh
// NodeInfo, zero timeouts) and installs remainingCache as b's new
// replacement cache. A no-op if deadID is no longer present
// in b — it may have already been replaced or removed by a concurrent pass.
func (t *Table) EvictAndReplace(b *bucket, deadID PeerID, replacement Node, remainingCache []Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range b.entries {
		if b.entries[i].ID == deadID {
			b.entries[i] = NodeInfo{Node: replacement, Timeouts: 0}
			b.cache = remainingCache
			return
		}
	}
}

// bucketSnapshot is a maintenance-facing view of one leaf: a live pointer
// to its bucket (see snapshotBuckets for the staleness note) plus the
// entries/cache copied out under lock.
type bucketSnapshot struct {
	b       *bucket
	entries []NodeInfo
	cache   []Node
}

// snapshotBuckets returns one bucketSnapshot per leaf. The *bucket
// pointers remain valid even if a concurrent InsertPeer later splits that
// leaf (the old bucket object is simply detached from the tree, not
// mutated), so a maintenance pass that mutates through these pointers
// either lands on the live bucket or harmlessly on a just-detached one
// that the next maintenance tick will re-discover via the tree.
func (t *Table) snapshotBuckets() []bucketSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []bucketSnapshot
	t.walk(t.root, func(b *bucket) {
		s := bucketSnapshot{b: b}
		s.entries = append(s.entries, b.entries...)
		s.cache = append(s.cache, b.cache...)
		out = append(out, s)
	})
	return out
}
