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
	"encoding/hex"
	"fmt"
	"math/bits"
)

// PeerIDBits is the width of the identifier space: SHA-224 output.
const PeerIDBits = 224
const peerIDBytes = PeerIDBits / 8

// PeerID is a 224-bit identifier, big-endian, derived as SHA-224 of a
// node's public key. Bit index 0 is the most significant bit.
type PeerID [peerIDBytes]byte

// String renders the id as a 0x-prefixed hex string.
func (id PeerID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// HexID parses a hex string (with or without 0x prefix) into a PeerID.
func HexID(in string) (PeerID, error) {
	var id PeerID
	b, err := hex.DecodeString(trim0x(in))
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("discover: hex id has wrong length, want %d bytes have %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// MustHexID is HexID but panics on error. Used in tests and static tables.
func MustHexID(in string) PeerID {
	id, err := HexID(in)
	if err != nil {
		panic(err)
	}
	return id
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// TestBit reports the value of the i'th most-significant bit of id
// (bit 0 is the MSB of id[0]).
func TestBit(id PeerID, i int) bool {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	return id[byteIdx]&(1<<bitIdx) != 0
}

// Distance returns the XOR metric between two identifiers.
func Distance(a, b PeerID) PeerID {
	var d PeerID
	for i := range a {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// distCmp compares the distances of a and b to target, returning -1, 0
// or 1 the way bytes.Compare does for (distance(target,a), distance(target,b)).
func distCmp(target, a, b PeerID) int {
	for i := range target {
		da := target[i] ^ a[i]
		db := target[i] ^ b[i]
		if da != db {
			if da < db {
				return -1
			}
			return 1
		}
	}
	return 0
}

// logDist returns the logarithmic distance between a and b: the position
// of the highest set bit in a XOR b, counted from 1 at the least
// significant end (so PeerIDBits when bit 0 differs), or 0 when a == b.
func logDist(a, b PeerID) int {
	lz := 0
	for i := range a {
		x := a[i] ^ b[i]
		if x == 0 {
			lz += 8
			continue
		}
		lz += bits.LeadingZeros8(x)
		break
	}
	return PeerIDBits - lz
}

// IsZero reports whether id is the all-zero identifier.
func (id PeerID) IsZero() bool {
	for _, b := range id {
		if b != 0 {
			return false
		}
	}
	return true
}
