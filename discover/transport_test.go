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

func TestSendRequestSyncReturnsOnSuccessValue(t *testing.T) {
	tr := newFakeTransport()
	peer := nodeAt(1).Peer
	tr.On(peer, true, Response{From: nodeAt(1)})

	got := sendRequestSync(tr, Request{Ping: &PingRequest{}}, peer,
		func() string { return "timeout" },
		func(resp Response) string { return resp.From.ID.String() },
	)
	assert.Equal(t, nodeAt(1).ID.String(), got)
}

func TestSendRequestSyncReturnsOnTimeoutValue(t *testing.T) {
	tr := newFakeTransport() // unscripted peer: always times out
	got := sendRequestSync(tr, Request{Ping: &PingRequest{}}, nodeAt(2).Peer,
		func() string { return "timeout" },
		func(resp Response) string { return "success" },
	)
	assert.Equal(t, "timeout", got)
}
