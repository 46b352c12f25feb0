// Copyright 2014 The go-ethereum Authors
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

// Package crypto provides the signature and identity primitives the
// discovery protocol relies on: Ed25519 signing/verification of RPC
// responses and SHA-224-derived peer identifiers.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/ed25519"
)

// ErrInvalidSignature is returned by Verify when the signature does not
// check out against the given public key and message.
var ErrInvalidSignature = errors.New("crypto: invalid signature")

// GenerateKey creates a new Ed25519 key pair using the system CSPRNG.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// Sign signs msg with priv, returning the raw Ed25519 signature.
func Sign(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify checks an Ed25519 signature over msg under pub. Responses that
// fail verification are dropped at the transport boundary and never
// reach the core.
func Verify(pub ed25519.PublicKey, msg, sig []byte) error {
	if !ed25519.Verify(pub, msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// PeerIDSize is the byte length of a PeerID: SHA-224 produces 28 bytes
// (224 bits)
const PeerIDSize = 28

// DerivePeerID computes a node's PeerID as SHA-224 of its Ed25519 public
// key.
func DerivePeerID(pub ed25519.PublicKey) [PeerIDSize]byte {
	return sha256.Sum224(pub)
}
