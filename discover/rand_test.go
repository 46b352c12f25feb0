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

	"github.com/stretchr/testify/assert"
)

func TestCryptoRandomSourceProducesDistinctValues(t *testing.T) {
	src := NewRandomSource()
	a := src.RandomPeerID()
	b := src.RandomPeerID()
	assert.NotEqual(t, a, b)

	r1 := src.RandomRpcID()
	r2 := src.RandomRpcID()
	assert.NotEqual(t, r1, r2)
}

func TestCryptoRandomSourceNotAllZero(t *testing.T) {
	src := NewRandomSource()
	var zero PeerID
	id := src.RandomPeerID()
	assert.NotEqual(t, zero, id)
}
