// Package config handles configuration for the server binaries,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"net"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
)

// Config holds runtime settings shared by the directory, replica and
// front-end processes. Each binary reads only the fields it needs.
//
// Fields:
//   - ReplicaID: name a replica binds under in the directory.
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - DirectoryAddr: address of the directory service.
//   - AdminAddr: bind address for /metrics and /healthz; empty disables it.
//   - AdvertiseAddr: address published in the directory; derived from
//     EndpointAddrGRPC when empty.
//   - PrivateKeyPath / PublicKeyPath: server Ed25519 key files.
//   - TokenValidityDuration: session token lifetime.
//   - RPCTimeout: deadline for each outgoing replica call.
//   - StateLocking: guard the replica state with a mutex.
//   - RateLimit / RateBurst: front-end admission limit; zero disables it.
type Config struct {
	ReplicaID             string
	EndpointAddrGRPC      string
	DirectoryAddr         string
	AdminAddr             string
	AdvertiseAddr         string
	PrivateKeyPath        string
	PublicKeyPath         string
	TokenValidityDuration time.Duration
	RPCTimeout            time.Duration
	StateLocking          bool
	RateLimit             float64
	RateBurst             int
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.ReplicaID = "replica-1"
	c.EndpointAddrGRPC = ":50051"
	c.DirectoryAddr = "127.0.0.1:1099"
	c.AdminAddr = ""
	c.AdvertiseAddr = ""
	c.PrivateKeyPath = "keys/server_private.key"
	c.PublicKeyPath = "keys/server_public.key"
	c.TokenValidityDuration = common.DefaultTokenValidity
	c.RPCTimeout = 2 * time.Second
	c.StateLocking = true
	c.RateLimit = 0
	c.RateBurst = 0
}

// Advertise returns the address other processes should dial. An endpoint
// without a host such as ":50051" is advertised on the loopback interface.
func (c *Config) Advertise() string {
	if c.AdvertiseAddr != "" {
		return c.AdvertiseAddr
	}
	host, port, err := net.SplitHostPort(c.EndpointAddrGRPC)
	if err != nil {
		return c.EndpointAddrGRPC
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
