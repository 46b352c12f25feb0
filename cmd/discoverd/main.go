// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// discoverd runs a standalone peer-discovery node: it joins an existing
// network from a seed peer and then serves FindNode/Ping for anyone who
// finds it.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/input-output-hk/peer-discovery/common"
	dcrypto "github.com/input-output-hk/peer-discovery/crypto"
	"github.com/input-output-hk/peer-discovery/discover"
	"github.com/input-output-hk/peer-discovery/logger"
	"github.com/input-output-hk/peer-discovery/logger/glog"
)

// Version is the application revision identifier. Set with the linker, as
// in: go build -ldflags "-X main.Version="`git describe --tags`
var Version = "unknown"

var (
	listenAddr  = flag.String("addr", ":30301", "listen address")
	genKey      = flag.String("genkey", "", "generate a node key and quit")
	nodeKeyHex  = flag.String("nodekeyhex", "", "private key as hex-encoded Ed25519 seed")
	publicAddr  = flag.String("publicaddr", "", "host:port whose port is announced to other nodes; the host part is ignored")
	bootstrap   = flag.String("bootstrap", "", "seed peer to join from, host:port")
	versionFlag = flag.Bool("version", false, "print the revision identifier and exit")
	mlogDir     = flag.String("mlogdir", "", "directory for machine-readable mlog output; disabled if empty")
	mlogComps   = flag.String("mlogcomponents", "", "comma-separated mlog components to activate, e.g. \"discover\"")
)

// setupMLogging wires the mlog file registry up per the -mlogdir/
// -mlogcomponents flags: a directory with no active components would write
// an empty file forever, and active components with no directory have
// nowhere to write, so either alone is a no-op.
func setupMLogging() {
	if *mlogDir == "" || *mlogComps == "" {
		return
	}
	logger.SetMLogDir(*mlogDir)
	f, filename, err := logger.CreateMLogFile(time.Now())
	if err != nil {
		log.Fatalf("mlogdir: %v", err)
	}
	if err := logger.MLogRegisterComponentsFromContext(*mlogComps); err != nil {
		log.Fatalf("mlogcomponents: %v", err)
	}
	logger.AddLogSystem(logger.NewMLogSystem(f, 0, logger.DebugLevel, true))
	log.Printf("mlog: writing components %q to %s", *mlogComps, filename)
}

// onlyDoGenKey exits 0 if successful. It does the -genkey flag feature and
// that is all.
func onlyDoGenKey() {
	_, priv, err := dcrypto.GenerateKey()
	if err != nil {
		log.Fatalf("could not generate key: %s", err)
	}
	if err := os.WriteFile(*genKey, []byte(hex.EncodeToString(priv.Seed())), 0600); err != nil {
		log.Fatalf("could not write key file: %v", err)
	}
	os.Exit(0)
}

func main() {
	flag.Var(glog.GetVerbosity(), "verbosity", "log verbosity (0-9)")
	flag.Var(glog.GetVModule(), "vmodule", "log verbosity pattern")
	glog.SetToStderr(true)
	flag.Parse()
	setupMLogging()

	if *versionFlag {
		fmt.Println("discoverd version", Version)
		os.Exit(0)
	}
	common.SetClientVersion(Version)

	if *genKey != "" {
		onlyDoGenKey()
	}

	if *nodeKeyHex == "" {
		log.Fatal("use -nodekeyhex to specify a private key, or -genkey to create one")
	}
	seed, err := hex.DecodeString(*nodeKeyHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		log.Fatalf("nodekeyhex: want a %d-byte hex-encoded seed", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	id := discover.PeerID(dcrypto.DerivePeerID(pub))

	var publicPort *uint16
	if *publicAddr != "" {
		_, portStr, err := net.SplitHostPort(*publicAddr)
		if err != nil {
			log.Fatalf("publicaddr: %v", err)
		}
		p, err := strconv.Atoi(portStr)
		if err != nil {
			log.Fatalf("publicaddr: %v", err)
		}
		port := uint16(p)
		publicPort = &port
	}

	udpAddr, err := net.ResolveUDPAddr("udp", *listenAddr)
	if err != nil {
		log.Fatalf("addr: %v", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	cfg := discover.DefaultConfig()
	rnd := discover.NewRandomSource()
	transport := discover.NewUDPTransport(conn, priv, rnd, cfg.ResponseTimeout)
	metrics := discover.NewMetrics()
	inst := discover.NewInstance(cfg, priv, id, publicPort, transport, rnd, metrics)
	transport.SetHandler(inst)

	go func() {
		if err := transport.Serve(); err != nil {
			log.Printf("udp: %v", err)
		}
	}()

	go runMaintenanceLoop(inst, cfg.MaintenanceInterval)

	if *bootstrap != "" {
		peer, err := parsePeer(*bootstrap)
		if err != nil {
			log.Fatalf("bootstrap: %v", err)
		}
		if !inst.Bootstrap(peer) {
			log.Printf("bootstrap from %s failed; running as an unreachable standalone node", *bootstrap)
		}
	}

	log.Printf("discoverd listening on %s, id %s", *listenAddr, inst.Self())
	select {}
}

func runMaintenanceLoop(inst *discover.Instance, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := inst.RunMaintenance(context.Background()); err != nil {
			log.Printf("maintenance: %v", err)
		}
	}
}

func parsePeer(s string) (discover.Peer, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return discover.Peer{}, err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return discover.Peer{}, fmt.Errorf("cannot resolve %q", host)
		}
		ip = ips[0]
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return discover.Peer{}, err
	}
	return discover.Peer{IP: ip, Port: uint16(port)}, nil
}

