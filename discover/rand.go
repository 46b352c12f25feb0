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

import crand "crypto/rand"

// cryptoRandomSource draws PeerIDs and RpcIDs from the system CSPRNG. Both
// maintenance's random FindNode targets and the far-half bootstrap lookup
// depend on these being unguessable, not merely well-distributed.
type cryptoRandomSource struct{}

// NewRandomSource returns the reference RandomSource implementation.
func NewRandomSource() RandomSource { return cryptoRandomSource{} }

func (cryptoRandomSource) RandomPeerID() PeerID {
	var id PeerID
	if _, err := crand.Read(id[:]); err != nil {
		panic("discover: system randomness unavailable: " + err.Error())
	}
	return id
}

func (cryptoRandomSource) RandomRpcID() RpcID {
	var id RpcID
	if _, err := crand.Read(id[:]); err != nil {
		panic("discover: system randomness unavailable: " + err.Error())
	}
	return id
}
