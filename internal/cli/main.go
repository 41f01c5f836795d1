// Package cli implement go-chat command line interface.
package cli

//
// main.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//
import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/config"
)

func Main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "print-version",
		Aliases: []string{"V"},
		Usage:   "Print version.",
	}

	app := &cli.Command{
		Name:    "go-chat",
		Usage:   "chat server with session management and console client",
		Version: config.VersionString,
		Flags:   slices.Concat(storeFlags(), logFlags()),
		Commands: []*cli.Command{
			newStartServerCmd(),
			newClientCmd(),
			usersSubCmd(),
			roomsSubCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		printError(os.Stderr, err, app.String("log.level") == "debug")
		os.Exit(1)
	}
}

// printError write message for user and, in debug mode, whole error chain.
func printError(out io.Writer, err error, debug bool) {
	fmt.Fprintf(out, "Error: %s\n", aerr.GetUserMessageOr(err, err.Error()))

	if debug {
		fmt.Fprintf(out, "Details: %+v\n", err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "store.driver",
			Value:   config.StoreSQLite,
			Usage:   "Storage backend (file, sqlite3, postgres)",
			Sources: cli.EnvVars("GOCHAT_STORE_DRIVER"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:      "store.connstr",
			Aliases:   []string{"D"},
			Value:     "chat.sqlite",
			Usage:     "Database connection string; directory for file store",
			Sources:   cli.EnvVars("GOCHAT_STORE_CONNSTR"),
			Validator: connstrValidator,
			Config:    cli.StringConfig{TrimSpace: true},
		},
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log.level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("GOCHAT_LOGLEVEL"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "log.format",
			Value:   logFormatConsole,
			Usage:   "Log format (console, logfmt, json, journald, syslog)",
			Sources: cli.EnvVars("GOCHAT_LOGFORMAT"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "debug",
			Usage:   "Comma separated debug flags (logbody, do, go, router, querymetrics, flightrecorder, trace, sessions, all)",
			Sources: cli.EnvVars("GOCHAT_DEBUG"),
		},
	}
}

func usersSubCmd() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "manage user accounts",
		Commands: []*cli.Command{
			newAddUserCmd(),
			newListUsersCmd(),
			newCheckUserCmd(),
		},
	}
}

func roomsSubCmd() *cli.Command {
	return &cli.Command{
		Name:  "room",
		Usage: "manage chat rooms",
		Commands: []*cli.Command{
			newAddRoomCmd(),
			newListRoomsCmd(),
		},
	}
}

//---------------------------------------------------------------------

func connstrValidator(connstr string) error {
	if connstr == "" {
		return aerr.New("store connection string cannot be empty")
	}

	return nil
}
