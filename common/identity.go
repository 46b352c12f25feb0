// Copyright 2017 The go-ethereum Authors
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

package common

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"
)

var clientSessionIdentity *ClientSessionIdentityT
var SessionID string // global because mlog lines stamp every line with it

func init() {
	initClientSessionIdentity()
}

// ClientSessionIdentityT holds values describing the running process for
// log stamping: which build, on which host, since when.
type ClientSessionIdentityT struct {
	Version   string    `json:"version"`
	Hostname  string    `json:"host"`
	Username  string    `json:"user"`
	Goos      string    `json:"goos"`
	Goarch    string    `json:"goarch"`
	Goversion string    `json:"goversion"`
	Pid       int       `json:"pid"`
	SessionID string    `json:"session"`
	StartTime time.Time `json:"start"`
}

// String is the stringer fn for ClientSessionIdentityT.
func (s *ClientSessionIdentityT) String() string {
	return fmt.Sprintf("VERSION=%s GO=%s GOOS=%s GOARCH=%s SESSIONID=%s HOSTNAME=%s USER=%s PID=%d",
		s.Version, s.Goversion, s.Goos, s.Goarch, s.SessionID, s.Hostname, s.Username, s.Pid)
}

func randSessionID(n int) string {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		return strings.Repeat("x", n*2)
	}
	return hex.EncodeToString(b)
}

// initClientSessionIdentity sets the global variable describing the client
// and session.
func initClientSessionIdentity() {
	SessionID = randSessionID(4)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	userName := "unknown"
	if current, err := user.Current(); err == nil {
		userName = current.Username
	}
	// Sanitize userName since it may contain filepath separators on Windows.
	userName = strings.Replace(userName, `\`, "_", -1)

	clientSessionIdentity = &ClientSessionIdentityT{
		Version:   "unknown",
		Hostname:  hostname,
		Username:  userName,
		Goos:      runtime.GOOS,
		Goarch:    runtime.GOARCH,
		Goversion: runtime.Version(),
		Pid:       os.Getpid(),
		SessionID: SessionID,
		StartTime: time.Now(),
	}
}

// SetClientVersion stamps the running build's version onto the session
// identity, typically from a linker-injected main.Version.
func SetClientVersion(version string) {
	if clientSessionIdentity != nil {
		clientSessionIdentity.Version = version
	}
}

// GetClientSessionIdentity is the getter fn for the clientSessionIdentity value.
func GetClientSessionIdentity() *ClientSessionIdentityT {
	return clientSessionIdentity
}
