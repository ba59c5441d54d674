package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nstehr/tundra/tundra-core/agent"
	"github.com/nstehr/tundra/tundra-core/config"
	"github.com/nstehr/tundra/tundra-core/ipc"
	"github.com/nstehr/tundra/tundra-core/manager"
	"github.com/nstehr/tundra/tundra-core/memory"
	"github.com/nstehr/tundra/tundra-core/metrics"
	"github.com/nstehr/tundra/tundra-core/observer"
	"github.com/nstehr/tundra/tundra-core/roles"
	"github.com/nstehr/tundra/tundra-core/rules"
	"github.com/spf13/cobra"
)

const banner = `
████████╗██╗   ██╗███╗   ██╗██████╗ ██████╗  █████╗
╚══██╔══╝██║   ██║████╗  ██║██╔══██╗██╔══██╗██╔══██╗
   ██║   ██║   ██║██╔██╗ ██║██║  ██║██████╔╝███████║
   ██║   ██║   ██║██║╚██╗██║██║  ██║██╔══██╗██╔══██║
   ██║   ╚██████╔╝██║ ╚████║██████╔╝██║  ██║██║  ██║
   ╚═╝    ╚═════╝ ╚═╝  ╚═══╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝

Job-Driven Colony Intelligence`

var version = "dev"

// Flags shared by every command.
var (
	configFile string
	rulesFile  string
	logLevel   string
	logFormat  string
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tundra",
		Short:        "Tundra: a job-driven Screeps colony controller",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "tuning YAML file (defaults when empty)")
	root.PersistentFlags().StringVar(&rulesFile, "rules", "", "spawn rule YAML file (built-in rules when empty)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")

	root.AddCommand(serveCommand())
	root.AddCommand(dryrunCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tundra", version)
		},
	})
	return root
}

func setupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "text":
		h = slog.NewTextHandler(os.Stdout, opts)
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		return fmt.Errorf("--log-format must be text or json, got %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func loadTuning() (config.Tuning, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// loadEngine builds the spawn rule engine from --rules, or the built-in set.
func loadEngine() (*rules.Engine, error) {
	if rulesFile == "" {
		return rules.NewEngine(rules.DefaultRules())
	}
	specs, err := rules.LoadSpecs(rulesFile)
	if err != nil {
		return nil, err
	}
	compiled, err := rules.Compile(specs)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(compiled)
}

func serveCommand() *cobra.Command {
	var (
		socketPath   string
		metricsAddr  string
		snapshotPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for game hosts on a unix socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), socketPath, metricsAddr, snapshotPath)
		},
	}
	cmd.Flags().StringVar(&socketPath, "socket", "/tmp/tundra.sock", "unix socket to listen on")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address serving /metrics and /observe (disabled when empty)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "memory snapshot file, restored on connect and saved periodically")
	return cmd
}

func serve(parent context.Context, socketPath, metricsAddr, snapshotPath string) error {
	fmt.Println(banner)
	slog.Info("starting tundra", "version", version)

	tuning, err := loadTuning()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	engine, err := loadEngine()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(nil)
	hub := observer.NewHub()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		mux.Handle("/observe", hub)
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("serving metrics and observer", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server failed", "addr", metricsAddr, "error", err)
			}
		}()
		defer srv.Close()
	}

	strategist := agent.NewStrategist(engine, rulesFile, tuning.Intervals.Rules)
	go strategist.Start(ctx)

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	newAgent := func(c *ipc.Connection) *agent.Agent {
		store := memory.New()
		if snapshotPath != "" {
			restored, tick, err := memory.ReadSnapshot(snapshotPath)
			switch {
			case err == nil:
				store = restored
				slog.Info("memory restored", "path", snapshotPath, "tick", tick)
			case !errors.Is(err, os.ErrNotExist):
				slog.Warn("memory snapshot unreadable, starting fresh", "path", snapshotPath, "error", err)
			}
		}
		m := manager.New(store, tuning, roles.DefaultRegistry(), engine)
		m.Metrics = collector
		m.Visuals = hub
		a := agent.New(c, m)
		a.Strategist = strategist
		a.SnapshotPath = snapshotPath
		a.SnapshotEvery = tuning.Intervals.Snapshot
		return a
	}

	var (
		mu      sync.Mutex
		conns   = make(map[net.Conn]struct{})
		wg      sync.WaitGroup
		closing bool
	)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			mu.Lock()
			if closing {
				mu.Unlock()
				conn.Close()
				return
			}
			conns[conn] = struct{}{}
			wg.Add(1)
			mu.Unlock()
			go func() {
				defer wg.Done()
				handleConn(conn, newAgent)
				mu.Lock()
				delete(conns, conn)
				mu.Unlock()
			}()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	listener.Close()

	// Closing the conns ends each read loop, which writes the final snapshot.
	mu.Lock()
	closing = true
	for conn := range conns {
		conn.Close()
	}
	mu.Unlock()
	wg.Wait()
	return nil
}

func handleConn(conn net.Conn, newAgent func(*ipc.Connection) *agent.Agent) {
	c := ipc.NewConnection(conn)
	a := newAgent(c)
	defer a.Close()
	c.Handle(ipc.TypeHello, a.HandleHello)
	c.Handle(ipc.TypeTick, a.HandleTick)
	if err := c.Serve(); err != nil {
		slog.Warn("host connection ended", "error", err)
	}
}
