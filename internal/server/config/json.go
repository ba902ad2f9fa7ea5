package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/auctionrep/internal/flagx"
	"github.com/dmitrijs2005/auctionrep/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both "10s"
// and integer nanoseconds; StateLocking is a pointer so that an explicit
// false can be told apart from an absent key.
type JsonConfig struct {
	ReplicaID             string         `json:"replica_id"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DirectoryAddr         string         `json:"directory_addr"`
	AdminAddr             string         `json:"admin_addr"`
	AdvertiseAddr         string         `json:"advertise_addr"`
	PrivateKeyPath        string         `json:"private_key_path"`
	PublicKeyPath         string         `json:"public_key_path"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	RPCTimeout            timex.Duration `json:"rpc_timeout"`
	StateLocking          *bool          `json:"state_locking"`
	RateLimit             float64        `json:"rate_limit"`
	RateBurst             int            `json:"rate_burst"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays values from the file named by -c or -config. Keys that
// are absent in the file leave the current values untouched. An unreadable
// or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.ReplicaID, c.ReplicaID)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DirectoryAddr, c.DirectoryAddr)
	setString(&config.AdminAddr, c.AdminAddr)
	setString(&config.AdvertiseAddr, c.AdvertiseAddr)
	setString(&config.PrivateKeyPath, c.PrivateKeyPath)
	setString(&config.PublicKeyPath, c.PublicKeyPath)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.RPCTimeout.Duration > 0 {
		config.RPCTimeout = c.RPCTimeout.Duration
	}
	if c.StateLocking != nil {
		config.StateLocking = *c.StateLocking
	}
	if c.RateLimit > 0 {
		config.RateLimit = c.RateLimit
	}
	if c.RateBurst > 0 {
		config.RateBurst = c.RateBurst
	}
}
