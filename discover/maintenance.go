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
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunMaintenance sweeps every bucket once. It is meant to be
// invoked periodically by an external timer at cfg.MaintenanceInterval;
// this package takes no timer dependency of its own.
func (in *Instance) RunMaintenance(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, snap := range in.table.snapshotBuckets() {
		snap := snap
		g.Go(func() error {
			in.maintainBucket(snap)
			return nil
		})
	}
	return g.Wait()
}

// maintainBucket probes every suspicious entry (timeoutCount > 0) of one
// bucket concurrently.
func (in *Instance) maintainBucket(snap bucketSnapshot) {
	var wg sync.WaitGroup
	for _, e := range snap.entries {
		if e.Timeouts <= 0 {
			continue
		}
		e := e
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.probeSuspicious(snap.b, e)
		}()
	}
	wg.Wait()
}

// probeSuspicious sends a FindNode with a random target to a suspicious
// entry. FindNode is used instead of Ping because a node that selectively
// ignores FindNode but answers Ping would otherwise occupy a useless slot
// forever.
func (in *Instance) probeSuspicious(b *bucket, e NodeInfo) {
	ok := sendRequestSync(in.transport, in.randomFindNode(), e.Peer,
		func() bool { return false },
		func(Response) bool { return true },
	)
	if ok {
		in.table.ClearTimeoutPeer(e.ID)
		if in.metrics != nil {
			in.metrics.MaintenanceRevivals.Inc(1)
		}
		return
	}

	in.table.TimeoutPeer(e.ID)
	if e.Timeouts+1 >= in.cfg.MaxTimeouts {
		in.attemptEviction(b, e.ID)
	}
}

// attemptEviction lazily pings every node in b's replacement cache, in
// order, stopping at the first that responds; that node replaces the dead
// slot and is removed from the cache. If none respond the bucket is left
// unchanged, which is what guarantees a total outage evicts nobody.
func (in *Instance) attemptEviction(b *bucket, deadID PeerID) {
	cache := in.table.BucketCache(b)
	for i, cand := range cache {
		if in.probeCacheCandidate(cand) {
			remaining := make([]Node, 0, len(cache)-1)
			remaining = append(remaining, cache[:i]...)
			remaining = append(remaining, cache[i+1:]...)
			in.table.EvictAndReplace(b, deadID, cand, remaining)
			in.logMaintenanceEvicted(deadID, cand.ID)
			return
		}
	}
}

// probeCacheCandidate pings cand, deduping concurrent probes of the same
// candidate arriving from different buckets' maintenance passes.
func (in *Instance) probeCacheCandidate(cand Node) bool {
	v, _, _ := in.pingGroup.Do(cand.ID.String(), func() (interface{}, error) {
		ok := sendRequestSync(in.transport, in.randomFindNode(), cand.Peer,
			func() bool { return false },
			func(Response) bool { return true },
		)
		return ok, nil
	})
	return v.(bool)
}

func (in *Instance) randomFindNode() Request {
	target := in.rand.RandomPeerID()
	return Request{FindNode: &FindNodeRequest{PeerID: in.Self(), PublicPort: in.publicPortValue(), Target: target}}
}
