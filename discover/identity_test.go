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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexIDRoundTrip(t *testing.T) {
	var want PeerID
	want[0] = 0xab
	want[27] = 0xcd

	id, err := HexID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	// without 0x prefix
	id2, err := HexID(strings.TrimPrefix(want.String(), "0x"))
	require.NoError(t, err)
	assert.Equal(t, want, id2)
}

func TestHexIDWrongLength(t *testing.T) {
	_, err := HexID("0xabcd")
	require.Error(t, err)
}

func TestMustHexIDPanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustHexID("not hex") })
}

func TestTestBitIsMSBFirst(t *testing.T) {
	var id PeerID
	id[0] = 0x80 // 1000_0000
	assert.True(t, TestBit(id, 0))
	for i := 1; i < 8; i++ {
		assert.False(t, TestBit(id, i))
	}
}

func TestDistanceIsXOR(t *testing.T) {
	var a, b PeerID
	a[0] = 0xff
	b[0] = 0x0f
	d := Distance(a, b)
	assert.Equal(t, byte(0xf0), d[0])
}

func TestDistCmpOrdersByDistanceToTarget(t *testing.T) {
	var target, near, far PeerID
	near[peerIDBytes-1] = 0x01
	far[peerIDBytes-1] = 0x02
	assert.Equal(t, -1, distCmp(target, near, far))
	assert.Equal(t, 1, distCmp(target, far, near))
	assert.Equal(t, 0, distCmp(target, near, near))
}

func TestLogDistIdenticalIsZero(t *testing.T) {
	var a PeerID
	assert.Equal(t, 0, logDist(a, a))
}

func TestLogDistOfMSBDiffIsFull(t *testing.T) {
	var a, b PeerID
	b[0] = 0x80
	assert.Equal(t, PeerIDBits, logDist(a, b))
}

func TestLogDistOfLSBDiffIsOne(t *testing.T) {
	var a, b PeerID
	b[peerIDBytes-1] = 0x01
	assert.Equal(t, 1, logDist(a, b))
}

func TestIsZero(t *testing.T) {
	var zero PeerID
	assert.True(t, zero.IsZero())
	nonzero := zero
	nonzero[5] = 1
	assert.False(t, nonzero.IsZero())
}
