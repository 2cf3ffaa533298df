package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"golang.org/x/sync/errgroup"

	"github.com/nstehr/ringfall/agent"
	"github.com/nstehr/ringfall/config"
	"github.com/nstehr/ringfall/ipc"
	"github.com/nstehr/ringfall/rules"
	"github.com/nstehr/ringfall/search"
)

const banner = `
 ____  ___ _   _  ____ _____ _    _     _
|  _ \|_ _| \ | |/ ___|  ___/ \  | |   | |
| |_) || ||  \| | |  _| |_ / _ \ | |   | |
|  _ < | || |\  | |_| |  _/ ___ \| |___| |___
|_| \_\___|_| \_|\____|_|/_/   \_\_____|_____|

Anytime Search for the Shrinking Zone`

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	socketPath := flag.String("socket", "", "unix socket to listen on (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *socketPath != "" {
		cfg.Agent.Socket = *socketPath
	}
	setupLogger(cfg.Agent)

	fmt.Println(banner)

	if err := run(cfg, *configPath); err != nil {
		log.Fatal().Err(err).Msg("ringfall stopped")
	}
}

func setupLogger(a config.Agent) {
	var out io.Writer = os.Stdout
	if a.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(a.LogLevel)
	if err != nil || a.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func run(cfg config.Config, configPath string) error {
	engine, err := rules.NewEngine(cfg.Doctrine)
	if err != nil {
		return fmt.Errorf("compile doctrine: %w", err)
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.Agent.Socket); err != nil {
		return fmt.Errorf("clean up socket %s: %w", cfg.Agent.Socket, err)
	}
	listener, err := net.Listen("unix", cfg.Agent.Socket)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Agent.Socket, err)
	}
	defer os.Remove(cfg.Agent.Socket)

	log.Info().
		Str("path", cfg.Agent.Socket).
		Str("doctrine", cfg.Doctrine.Name).
		Dur("tick_budget", cfg.Agent.TickBudget).
		Msg("listening on domain socket")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		return listener.Close()
	})
	eg.Go(func() error {
		if configPath == "" {
			<-ctx.Done()
			return nil
		}
		return agent.NewStrategist(engine, configPath).Start(ctx, hup)
	})
	eg.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				log.Error().Err(err).Msg("failed to accept connection")
				continue
			}
			go handleConn(ctx, conn, engine, cfg)
		}
	})

	err = eg.Wait()
	log.Info().Msg("shutting down")
	return err
}

func handleConn(ctx context.Context, conn net.Conn, engine *rules.Engine, cfg config.Config) {
	c := ipc.NewConnection(conn, uuid.NewString(), nil)
	c.Log.Info().Msg("new connection accepted")
	a := agent.New(c, engine, cfg.Search, cfg.Agent.Seed, search.SystemClock)
	a.Register()

	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	c.ReadLoop()
}
