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
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// queriedSet is the single map shared by every worker of one PeerLookup
// call, keeping the D paths disjoint: tryMark only succeeds once per id,
// no matter which worker calls it.
type queriedSet struct {
	mu sync.Mutex
	m  map[PeerID]bool
}

func newQueriedSet() *queriedSet {
	return &queriedSet{m: make(map[PeerID]bool)}
}

func (q *queriedSet) tryMark(id PeerID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.m[id] {
		return false
	}
	q.m[id] = true
	return true
}

// candidateList is a worker-local, distance-sorted view of lookup
// candidates. It is never touched by more than one goroutine.
type candidateList struct {
	target PeerID
	nodes  []Node
}

func newCandidateList(target PeerID, seeds []Node, max int) *candidateList {
	c := &candidateList{target: target}
	c.mergeAndTrim(seeds, max)
	return c
}

func (c *candidateList) mergeAndTrim(fresh []Node, max int) {
	seen := make(map[PeerID]bool, len(c.nodes))
	for _, n := range c.nodes {
		seen[n.ID] = true
	}
	for _, n := range fresh {
		if !seen[n.ID] {
			seen[n.ID] = true
			c.nodes = append(c.nodes, n)
		}
	}
	sort.SliceStable(c.nodes, func(i, j int) bool {
		return distCmp(c.target, c.nodes[i].ID, c.nodes[j].ID) < 0
	})
	if len(c.nodes) > max {
		c.nodes = c.nodes[:max]
	}
}

func (c *candidateList) remove(id PeerID) {
	for i, n := range c.nodes {
		if n.ID == id {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return
		}
	}
}

func (c *candidateList) minDist() (PeerID, bool) {
	if len(c.nodes) == 0 {
		return PeerID{}, false
	}
	return c.nodes[0].ID, true
}

func (c *candidateList) nearest(k int) []Node {
	if len(c.nodes) < k {
		return append([]Node(nil), c.nodes...)
	}
	return append([]Node(nil), c.nodes[:k]...)
}

// pickUnqueried atomically marks up to n not-yet-queried candidates (closest
// first) as queried in the shared set and returns them.
func (c *candidateList) pickUnqueried(q *queriedSet, n int) []Node {
	var picked []Node
	for _, node := range c.nodes {
		if len(picked) >= n {
			break
		}
		if q.tryMark(node.ID) {
			picked = append(picked, node)
		}
	}
	return picked
}

type workerReply struct {
	peer Node
	ok   bool
	resp Response
}

// PeerLookup locates up to K nodes believed live and near target, using D
// parallel disjoint iterative paths with majority-vote filtering.
func (in *Instance) PeerLookup(target PeerID) []Node {
	if in.metrics != nil {
		in.metrics.LookupCalls.Inc(1)
	}
	cfg := in.cfg
	d := cfg.Alpha
	self := in.Self()

	seeds := in.table.FindClosest(cfg.K, target)
	buckets := partition(seeds, d)
	queried := newQueriedSet()

	results := make([][]Node, d)
	var g errgroup.Group
	for i := 0; i < d; i++ {
		i := i
		g.Go(func() error {
			results[i] = in.lookupWorker(target, buckets[i], queried)
			return nil
		})
	}
	g.Wait()

	return majorityVote(results, d, cfg.K, target, self)
}

// partition splits seeds into n disjoint, roughly equal slices.
func partition(seeds []Node, n int) [][]Node {
	buckets := make([][]Node, n)
	for i, s := range seeds {
		buckets[i%n] = append(buckets[i%n], s)
	}
	return buckets
}

// lookupWorker runs one of the D disjoint iterative paths: alpha-wide rounds, then a closing round over whatever in the
// current K-closest view is still unqueried, repeated until no candidates
// remain unqueried.
func (in *Instance) lookupWorker(target PeerID, seedBucket []Node, queried *queriedSet) []Node {
	cfg := in.cfg
	maxCandidates := (cfg.Alpha + 1) * cfg.K
	candidates := newCandidateList(target, seedBucket, maxCandidates)
	failed := map[PeerID]bool{in.Self(): true}

	for {
		view := &candidateList{target: target, nodes: candidates.nearest(cfg.K)}
		round := view.pickUnqueried(queried, cfg.Alpha)
		if len(round) == 0 {
			return candidates.nearest(cfg.K)
		}
		in.runRound(round, candidates, failed, queried, target, maxCandidates)

		view = &candidateList{target: target, nodes: candidates.nearest(cfg.K)}
		closing := view.pickUnqueried(queried, cfg.K)
		if len(closing) > 0 {
			in.runRound(closing, candidates, failed, queried, target, maxCandidates)
		}
	}
}

// runRound issues FindNode to every node in batch and processes replies as
// they arrive, immediately issuing a further alpha-wide round whenever a
// reply makes progress (the candidate set's closest member changes).
func (in *Instance) runRound(batch []Node, candidates *candidateList, failed map[PeerID]bool, queried *queriedSet, target PeerID, maxCandidates int) {
	replyCh := make(chan workerReply, len(batch)*4)
	pending := 0

	send := func(nodes []Node) {
		for _, n := range nodes {
			pending++
			n := n
			in.transport.SendRequest(
				Request{FindNode: &FindNodeRequest{PeerID: in.Self(), PublicPort: in.publicPortValue(), Target: target}},
				n.Peer,
				func() { replyCh <- workerReply{peer: n, ok: false} },
				func(resp Response) { replyCh <- workerReply{peer: n, ok: true, resp: resp} },
			)
		}
	}
	send(batch)

	for pending > 0 {
		r := <-replyCh
		pending--
		if !r.ok {
			failed[r.peer.ID] = true
			in.table.TimeoutPeer(r.peer.ID)
			candidates.remove(r.peer.ID)
			continue
		}

		in.table.UnsafeInsertPeer(r.resp.From)

		var fresh []Node
		if nodes := r.resp.Payload.ReturnNodes; nodes != nil {
			for _, wn := range nodes.Nodes {
				n := wn.ToNode()
				if !failed[n.ID] {
					fresh = append(fresh, n)
				}
			}
		}

		before, hadBefore := candidates.minDist()
		candidates.mergeAndTrim(fresh, maxCandidates)
		after, hadAfter := candidates.minDist()

		progressed := hadAfter && (!hadBefore || after != before)
		if progressed {
			more := candidates.pickUnqueried(queried, in.cfg.Alpha)
			send(more)
		}
	}
}

// majorityVote aggregates the D workers' result lists, keeping nodes that
// occur in strictly more than D/2 of them, and returns up to K by distance
// to target. D/2 is integer division, so with d == 1 every node the single
// path returned passes.
func majorityVote(results [][]Node, d, k int, target, self PeerID) []Node {
	counts := make(map[PeerID]int)
	nodeByID := make(map[PeerID]Node)
	for _, path := range results {
		seenInPath := make(map[PeerID]bool)
		for _, n := range path {
			if n.ID == self || seenInPath[n.ID] {
				continue
			}
			seenInPath[n.ID] = true
			counts[n.ID]++
			nodeByID[n.ID] = n
		}
	}

	var winners []Node
	for id, c := range counts {
		if c > d/2 {
			winners = append(winners, nodeByID[id])
		}
	}
	sort.SliceStable(winners, func(i, j int) bool {
		return distCmp(target, winners[i].ID, winners[j].ID) < 0
	})
	if len(winners) > k {
		winners = winners[:k]
	}
	return winners
}
