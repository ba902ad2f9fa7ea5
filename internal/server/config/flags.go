package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/auctionrep/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-n string     replica id
//	-a string     gRPC bind address (e.g., ":50051")
//	-r string     directory address
//	-m string     admin HTTP address
//	-p string     advertised address
//	-k string     private key path
//	-pk string    public key path
//	-t duration   token validity (e.g., "10s")
//	-o duration   per-call RPC timeout
//	-l bool       state locking; disable with -l=false
//	-q float      front-end requests per second
//	-b int        front-end burst
//
// Only the flags above are passed to the flag set, so the -c/-config flag
// read by parseJson does not trip it.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-n", "-a", "-r", "-m", "-p", "-k", "-pk", "-t", "-o", "-l", "-q", "-b",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ReplicaID, "n", config.ReplicaID, "replica id")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DirectoryAddr, "r", config.DirectoryAddr, "directory address")
	fs.StringVar(&config.AdminAddr, "m", config.AdminAddr, "admin (metrics) address")
	fs.StringVar(&config.AdvertiseAddr, "p", config.AdvertiseAddr, "address published in the directory")
	fs.StringVar(&config.PrivateKeyPath, "k", config.PrivateKeyPath, "server private key path")
	fs.StringVar(&config.PublicKeyPath, "pk", config.PublicKeyPath, "server public key path")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity duration")
	fs.DurationVar(&config.RPCTimeout, "o", config.RPCTimeout, "rpc timeout")
	fs.BoolVar(&config.StateLocking, "l", config.StateLocking, "guard replica state with a lock")
	fs.Float64Var(&config.RateLimit, "q", config.RateLimit, "front-end requests per second (0 = unlimited)")
	fs.IntVar(&config.RateBurst, "b", config.RateBurst, "front-end burst")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
