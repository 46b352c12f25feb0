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

// Response is what Transport hands back on a verified reply: the
// already-authenticated responder identity (PeerID = SHA-224(publicKey),
// signature checked over (rpcId, req, payload)) and its payload. The core
// never sees an unverified or malformed packet — that is the transport's
// contract.
type Response struct {
	From    Node
	Payload ResponsePayload
}

// Transport is the communication collaborator of the discovery core. It is
// implemented outside the core (udp.go ships one concrete implementation)
// and is consumed by bootstrap.go, lookup.go and maintenance.go.
type Transport interface {
	// SendRequest is non-blocking. Exactly one of onTimeout or onSuccess
	// fires, exactly once, after at most cfg.ResponseTimeout.
	SendRequest(req Request, peer Peer, onTimeout func(), onSuccess func(Response))

	// SendTo is a fire-and-forget UDP emission. UDPTransport uses it to
	// send its outbound requests and the replies handler.go builds for
	// inbound requests (a Pong goes to the Ping's ReturnPort when set).
	SendTo(peer Peer, packet []byte)
}

// RandomSource is the CSPRNG collaborator used to draw PeerIDs and RpcIDs.
type RandomSource interface {
	RandomPeerID() PeerID
	RandomRpcID() RpcID
}

// sendRequestSync is the synchronous convenience variant of SendRequest:
// it is not part of the Transport interface because it adds no capability
// over SendRequest, only a blocking call shape built on top of it with a
// channel.
func sendRequestSync[T any](tr Transport, req Request, peer Peer, onTimeout func() T, onSuccess func(Response) T) T {
	result := make(chan T, 1)
	tr.SendRequest(req, peer,
		func() { result <- onTimeout() },
		func(resp Response) { result <- onSuccess(resp) },
	)
	return <-result
}
