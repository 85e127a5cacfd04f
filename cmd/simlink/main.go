package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"simlink/internal/api"
	"simlink/pkg/aircraft"
	"simlink/pkg/config"
	"simlink/pkg/db"
	"simlink/pkg/db/maintenance"
	"simlink/pkg/dcs"
	"simlink/pkg/logging"
	"simlink/pkg/probe"
	"simlink/pkg/session"
	"simlink/pkg/store"
	"simlink/pkg/transport"
	"simlink/pkg/transport/falcon"
	"simlink/pkg/transport/udp"
	"simlink/pkg/version"
)

const defaultConfigPath = "configs/simlink.yaml"

var (
	configPath   = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig   = flag.Bool("init-config", false, "Generate default config file and exit")
	printVersion = flag.Bool("version", false, "Print version and exit")
	trace        = flag.Bool("trace", false, "Log every received packet")
)

func main() {
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String("simlink"))
		return
	}

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()
	logging.EnableTrace = *trace

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SimLink Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := maintenance.Run(ctx, st, dbConn, appCfg.Sim.Definitions, time.Duration(appCfg.DB.Retention)); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	prov := config.NewProvider(appCfg, st)

	iface, err := aircraft.New(prov.Aircraft(ctx), dcs.WithTolerance(prov.SwitchTolerance(ctx)))
	if err != nil {
		return fmt.Errorf("failed to create interface: %w", err)
	}
	if n, err := iface.LoadDefinitions(ctx, st); err != nil {
		slog.Error("Failed to load stored definitions", "interface", iface.Name(), "error", err)
	} else if n > 0 {
		slog.Info("Using stored definitions", "interface", iface.Name(), "definitions", n)
	}

	tr, err := openTransport(ctx, prov)
	if err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}

	results := probe.Run(ctx, []probe.Probe{
		probe.Database(dbConn),
		probe.Link("Simulator link", func(context.Context) error {
			if tr.State() != transport.StateConnected {
				return transport.ErrNotConnected
			}
			return nil
		}),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		tr.Close()
		return fmt.Errorf("startup checks failed: %w", err)
	}

	hub := api.NewHub(iface)
	opts := []session.Option{session.WithTrafficLogger(logging.TrafficLogger)}
	if appCfg.Bridge.Enabled {
		opts = append(opts, session.WithSink(hub))
	}
	sess, err := iface.Attach(tr, opts...)
	if err != nil {
		tr.Close()
		return fmt.Errorf("failed to attach interface: %w", err)
	}
	defer func() {
		if err := iface.Detach(); err != nil && !errors.Is(err, dcs.ErrNotAttached) {
			slog.Warn("Detach failed", "error", err)
		}
	}()

	go sess.Run(ctx, prov.SyncLoop(ctx))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	if !appCfg.Bridge.Enabled {
		select {
		case <-quit:
			slog.Info("Shutting down...")
		case <-ctx.Done():
			slog.Info("Context cancelled, shutting down...")
		}
		return nil
	}

	go hub.Run(ctx)
	srv := api.NewServer(appCfg.Bridge.Address, hub, iface, func() {
		select {
		case quit <- syscall.SIGTERM:
		default:
		}
	})
	return runServerLifecycle(ctx, srv, quit)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// openTransport opens the link selected by the provider setting.
func openTransport(ctx context.Context, prov config.Provider) (transport.Transport, error) {
	cfg := prov.AppConfig()
	switch p := prov.SimProvider(ctx); p {
	case config.ProviderUDP:
		slog.Info("Opening DCS export link", "listen", cfg.UDP.Listen, "remote", prov.RemoteAddr(ctx))
		tr, err := udp.Open(udp.Config{
			Listen:    cfg.UDP.Listen,
			Remote:    prov.RemoteAddr(ctx),
			MaxPacket: cfg.UDP.MaxPacket,
			Queue:     cfg.UDP.Queue,
			Timeout:   time.Duration(cfg.UDP.Timeout),
		})
		if err != nil {
			return nil, err
		}
		return tr, nil
	case config.ProviderFalcon:
		slog.Info("Using Falcon shared memory", "area", cfg.Falcon.Area)
		return falcon.New(falcon.Config{
			Area:      cfg.Falcon.Area,
			Reconnect: time.Duration(cfg.Falcon.Reconnect),
		}), nil
	case config.ProviderMock:
		slog.Info("Using loopback transport")
		return transport.NewLoopback(), nil
	default:
		return nil, fmt.Errorf("unknown sim provider %q", p)
	}
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting bridge", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down bridge...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("bridge failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
