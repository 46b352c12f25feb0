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

import "errors"

// Error categories for terminal, non-retryable outcomes. Transient
// per-RPC timeouts never surface as errors at this layer; bootstrap and
// table-insertion outcomes are communicated through bool/struct results
// instead of errors (see Bootstrap, InsertPeer) since both have more than
// one non-error terminal state to report. Only the two outcomes below are
// true "this call failed, full stop" errors.
var (
	// ErrSelfID is returned when a request's claimed PeerID is our own —
	// accepting it as a routing-table candidate would let a remote
	// overwrite our own identity's table entry under an address it chose.
	ErrSelfID = errors.New("discover: refusing to operate on local id")

	// ErrClosed is returned by Close when the transport has already been
	// shut down.
	ErrClosed = errors.New("discover: instance closed")
)

// validateCandidate rejects a would-be routing-table candidate that
// claims our own PeerID.
func validateCandidate(candidate Node, self PeerID) error {
	if candidate.ID == self {
		return ErrSelfID
	}
	return nil
}
