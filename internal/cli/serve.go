package cli

//
// serve.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	"os/signal"
	"slices"
	"syscall"

	"github.com/Merovius/systemd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-chat/internal/aerr"
	chatapi "gitlab.com/kabes/go-chat/internal/api"
	"gitlab.com/kabes/go-chat/internal/config"
	"gitlab.com/kabes/go-chat/internal/hub"
	"gitlab.com/kabes/go-chat/internal/repository"
	"gitlab.com/kabes/go-chat/internal/server"
	"gitlab.com/kabes/go-chat/internal/session"
)

func newStartServerCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "start chat server",
		Flags:  slices.Concat(listenFlags(), mgmtFlags(), sessionFlags()),
		Action: wrap(startServerCmd),
	}
}

func listenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Value:   ":8080",
			Usage:   "chat api listen address",
			Sources: cli.EnvVars("GOCHAT_SERVER_ADDRESS"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "web-root",
			Aliases: []string{"w"},
			Value:   "/chat",
			Usage:   "prefix of all chat api paths",
			Sources: cli.EnvVars("GOCHAT_SERVER_WEBROOT"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:      "cert",
			Usage:     "tls certificate file; https is enabled when both cert and key are set",
			Sources:   cli.EnvVars("GOCHAT_SERVER_CERT"),
			Config:    cli.StringConfig{TrimSpace: true},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      "key",
			Usage:     "tls private key file",
			Sources:   cli.EnvVars("GOCHAT_SERVER_KEY"),
			Config:    cli.StringConfig{TrimSpace: true},
			TakesFile: true,
		},
	}
}

func mgmtFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mgmt-address",
			Aliases: []string{"m"},
			Usage:   "management endpoints (health, metrics, debug) listen address; may be equal to --address",
			Sources: cli.EnvVars("GOCHAT_MGMT_SERVER_ADDRESS"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "mgmt-access-list",
			Usage:   "comma separated addresses and networks (CIDR) allowed to use management endpoints",
			Sources: cli.EnvVars("GOCHAT_MGMT_SERVER_ACCESS_LIST"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.BoolFlag{
			Name:    "enable-metrics",
			Usage:   "expose prometheus metrics on management server",
			Sources: cli.EnvVars("GOCHAT_SERVER_METRICS"),
		},
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    "session-alive-time",
			Value:   config.DefaultSessionAliveTime,
			Usage:   "session expire after this time without activity",
			Sources: cli.EnvVars("GOCHAT_SESSION_ALIVE_TIME"),
		},
		&cli.DurationFlag{
			Name:    "session-sweep-interval",
			Value:   config.DefaultSessionSweepInterval,
			Usage:   "how often expired sessions are removed",
			Sources: cli.EnvVars("GOCHAT_SESSION_SWEEP_INTERVAL"),
		},
		&cli.StringFlag{
			Name:    "session-policy",
			Value:   config.SessionPolicyReuse,
			Usage:   "login of user with live session: reuse it or rotate its id (reuse, rotate)",
			Sources: cli.EnvVars("GOCHAT_SESSION_POLICY"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
	}
}

//-------------------------------------------------------------

func serverConfFromCmd(clicmd *cli.Command) (*config.ServerConf, error) {
	conf := &config.ServerConf{
		MainServer: config.ListenConf{
			Address: clicmd.String("address"),
			WebRoot: clicmd.String("web-root"),
			TLSKey:  clicmd.String("key"),
			TLSCert: clicmd.String("cert"),
		},
		MgmtServer:     config.ListenConf{Address: clicmd.String("mgmt-address")},
		DebugFlags:     config.NewDebugFlags(clicmd.String("debug")),
		EnableMetrics:  clicmd.Bool("enable-metrics"),
		MgmtAccessList: clicmd.String("mgmt-access-list"),
	}

	if err := conf.Validate(); err != nil {
		return nil, aerr.Wrapf(err, "invalid server configuration")
	}

	return conf, nil
}

func sessionConfFromCmd(clicmd *cli.Command) (*config.SessionConf, error) {
	conf := &config.SessionConf{
		AliveTime:     clicmd.Duration("session-alive-time"),
		SweepInterval: clicmd.Duration("session-sweep-interval"),
		Policy:        clicmd.String("session-policy"),
	}

	if err := conf.Validate(); err != nil {
		return nil, aerr.Wrapf(err, "invalid session configuration")
	}

	return conf, nil
}

func startServerCmd(ctx context.Context, clicmd *cli.Command, rootInjector do.Injector) error {
	serverConf, err := serverConfFromCmd(clicmd)
	if err != nil {
		return err
	}

	sessionConf, err := sessionConfFromCmd(clicmd)
	if err != nil {
		return err
	}

	logger := log.Ctx(ctx)

	mgr, err := session.NewManager(
		session.Config{
			AliveTime:     sessionConf.AliveTime,
			SweepInterval: sessionConf.SweepInterval,
			Policy:        session.Policy(sessionConf.Policy),
		},
		session.WithRegisterer(prometheus.DefaultRegisterer),
		session.WithLogger(logger.With().Str("module", "session").Logger()),
	)
	if err != nil {
		return aerr.Wrapf(err, "create session manager failed")
	}

	// services resolved in root scope must see session manager and hub
	do.ProvideValue(rootInjector, mgr)
	hub.Package(rootInjector)

	injector := rootInjector.Scope("server", chatapi.Package, server.Package)
	do.ProvideValue(injector, serverConf)

	if serverConf.DebugFlags.HasFlag(config.DebugDo) {
		enableDoDebug(ctx, injector.RootScope())
	}

	runner := serverRunner{
		injector: injector,
		conf:     serverConf,
		logger:   logger,
	}

	logger.Log().Msgf("Starting go-chat (%s)...", config.VersionString)
	logger.Debug().Msgf("Server: debug_flags=%q", serverConf.DebugFlags)
	logger.Info().Object("session", sessionConf).Msg("Server: session configuration")

	return runner.run(ctx)
}

//-------------------------------------------------------------

// serverRunner start background workers and http servers, then wait for
// termination signal. Stopping is done by injector shutdown in `wrap`.
type serverRunner struct {
	injector do.Injector
	conf     *config.ServerConf
	logger   *zerolog.Logger
}

func (r *serverRunner) run(ctx context.Context) error {
	r.startSystemdWatchdog()
	r.registerStoreMetrics()

	r.startWorkers(ctx)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := do.MustInvoke[*server.Server](r.injector).Start(ctx); err != nil {
		return aerr.Wrapf(err, "start chat server failed")
	}

	if r.conf.SeparateMgmtEnabled() {
		if err := do.MustInvoke[*server.MgmtServer](r.injector).Start(ctx); err != nil {
			return aerr.Wrapf(err, "start management server failed")
		}
	}

	systemd.NotifyReady()           //nolint:errcheck
	systemd.NotifyStatus("running") //nolint:errcheck

	<-ctx.Done()

	r.logger.Log().Msg("Server: stopping...")
	systemd.NotifyStatus("stopping") //nolint:errcheck

	return nil
}

// startWorkers launch session sweeper and websocket hub. They run until
// injector shutdown, also after termination signal.
func (r *serverRunner) startWorkers(ctx context.Context) {
	do.MustInvoke[*session.Manager](r.injector).Start(context.WithoutCancel(ctx))
	do.MustInvoke[*hub.Hub](r.injector).Start()
}

func (r *serverRunner) startSystemdWatchdog() {
	ok, dur, err := systemd.AutoWatchdog()

	switch {
	case ok:
		r.logger.Info().Msgf("Systemd: autowatchdog started; duration=%s", dur)
	case err != nil:
		r.logger.Warn().Err(err).Msgf("Systemd: autowatchdog start error=%q", err)
	}
}

type metricsRegisterer interface {
	RegisterMetrics(reg prometheus.Registerer, queryTime bool)
}

// registerStoreMetrics register database metrics when metrics are enabled
// and store support them.
func (r *serverRunner) registerStoreMetrics() {
	if !r.conf.EnableMetrics {
		return
	}

	mr, ok := do.MustInvoke[repository.Repository](r.injector).(metricsRegisterer)
	if !ok {
		return
	}

	mr.RegisterMetrics(prometheus.DefaultRegisterer, r.conf.DebugFlags.HasFlag(config.DebugDBQueryMetrics))
	r.logger.Debug().Msg("Server: store metrics registered")
}
