// Package server assembles the directory, replica and front-end processes
// from their components and runs them until a termination signal arrives.
package server

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/auctionrep/internal/common"
	"github.com/dmitrijs2005/auctionrep/internal/cryptox"
	"github.com/dmitrijs2005/auctionrep/internal/logging"
	"github.com/dmitrijs2005/auctionrep/internal/metrics"
	"github.com/dmitrijs2005/auctionrep/internal/server/auction"
	"github.com/dmitrijs2005/auctionrep/internal/server/auth"
	"github.com/dmitrijs2005/auctionrep/internal/server/config"
	"github.com/dmitrijs2005/auctionrep/internal/server/directory"
	"github.com/dmitrijs2005/auctionrep/internal/server/frontend"
	"github.com/dmitrijs2005/auctionrep/internal/server/replica"
	"github.com/dmitrijs2005/auctionrep/internal/server/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	gs "github.com/dmitrijs2005/auctionrep/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger

	rpc   *gs.GRPCServer
	admin *metrics.AdminServer

	// start runs once the gRPC server has been launched; an error stops the app.
	start func(ctx context.Context) error
	// stop runs after every component has returned.
	stop func(ctx context.Context)
}

func newLogger(role string) logging.Logger {
	return logging.NewJSONLogger(os.Stdout, slog.LevelInfo).With("role", role, "instance", uuid.NewString())
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (app *App) withAdmin(reg *prometheus.Registry, health func() error) {
	if app.config.AdminAddr == "" {
		return
	}
	app.admin = metrics.NewAdminServer(app.config.AdminAddr, metrics.NewRouter(reg, health), app.logger)
}

// NewDirectoryApp serves the registry directory on DirectoryAddr.
func NewDirectoryApp(c *config.Config) (*App, error) {
	logger := newLogger("directory")

	app := &App{config: c, logger: logger}
	app.rpc = gs.NewDirectoryServer(c.DirectoryAddr, logger, directory.New())
	app.withAdmin(newRegistry(), nil)

	return app, nil
}

// loadServerKey returns the shared server key. Any failure is logged and
// yields a nil key, in which case the replica answers every challenge with
// an internal error.
func loadServerKey(ctx context.Context, c *config.Config, l logging.Logger) ed25519.PrivateKey {
	key, generated, err := cryptox.LoadOrGenerate(c.PrivateKeyPath, c.PublicKeyPath)
	if err != nil {
		l.Error(ctx, "server key unavailable, challenges will fail", "error", err)
		return nil
	}
	if generated {
		l.Info(ctx, "generated server key pair", "private", c.PrivateKeyPath, "public", c.PublicKeyPath)
	}
	return key
}

// NewReplicaApp builds a replica named c.ReplicaID. On start it copies the
// state of the first reachable peer and then binds itself in the directory.
func NewReplicaApp(c *config.Config) (*App, error) {
	logger := newLogger("replica").With("replica_id", c.ReplicaID)
	ctx := context.Background()

	var storeOpts []auction.Option
	if !c.StateLocking {
		storeOpts = append(storeOpts, auction.WithoutLocking())
	}
	store := auction.NewStore(storeOpts...)

	handler := auth.NewHandler(store, loadServerKey(ctx, c, logger),
		auth.WithTokenValidity(c.TokenValidityDuration),
		auth.WithLogger(logger),
	)
	svc := services.NewAuctionService(store, handler, logger)

	dir, err := gs.NewDirectoryClient(c.DirectoryAddr, c.RPCTimeout)
	if err != nil {
		return nil, err
	}
	resolver := gs.NewReplicaResolver(dir, c.RPCTimeout)

	reg := newRegistry()
	collector := metrics.NewCollector(reg)

	r := replica.New(c.ReplicaID, svc, replica.NewReplicator(c.ReplicaID, store, resolver, logger, collector))

	app := &App{config: c, logger: logger}
	app.rpc = gs.NewReplicaServer(c.EndpointAddrGRPC, logger, r)
	app.withAdmin(reg, nil)

	app.start = func(ctx context.Context) error {
		if !r.Bootstrap(ctx) {
			logger.Info(ctx, "no peer state available, starting empty")
		}
		return dir.Bind(ctx, c.ReplicaID, c.Advertise())
	}
	app.stop = func(ctx context.Context) {
		if err := dir.Unbind(ctx, c.ReplicaID); err != nil {
			logger.Warn(ctx, "unbind failed", "error", err)
		}
		_ = resolver.Close()
		_ = dir.Close()
	}

	return app, nil
}

// NewFrontEndApp builds the front end, which binds itself in the directory
// under common.FrontEndName.
func NewFrontEndApp(c *config.Config) (*App, error) {
	logger := newLogger("frontend")

	dir, err := gs.NewDirectoryClient(c.DirectoryAddr, c.RPCTimeout)
	if err != nil {
		return nil, err
	}
	resolver := gs.NewReplicaResolver(dir, c.RPCTimeout)

	reg := newRegistry()
	fe := frontend.New(resolver, logger, metrics.NewCollector(reg))

	var limiter *rate.Limiter
	if c.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.RateLimit), max(c.RateBurst, 1))
	}

	app := &App{config: c, logger: logger}
	app.rpc = gs.NewFrontEndServer(c.EndpointAddrGRPC, logger, fe, limiter)
	app.withAdmin(reg, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), c.RPCTimeout)
		defer cancel()
		return fe.Healthy(ctx)
	})

	app.start = func(ctx context.Context) error {
		return dir.Bind(ctx, common.FrontEndName, c.Advertise())
	}
	app.stop = func(ctx context.Context) {
		if err := dir.Unbind(ctx, common.FrontEndName); err != nil {
			logger.Warn(ctx, "unbind failed", "error", err)
		}
		_ = resolver.Close()
		_ = dir.Close()
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a component fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// accept connections before start binds us in the directory
	listen, err := app.rpc.Listen()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.rpc.Serve(gctx, listen)
	})

	if app.admin != nil {
		g.Go(func() error {
			return app.admin.Run(gctx)
		})
	}

	if app.start != nil {
		g.Go(func() error {
			return app.start(gctx)
		})
	}

	err = g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped", "error", err)
	}

	if app.stop != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		app.stop(stopCtx)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
