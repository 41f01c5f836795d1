package cli

//
// client.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/client"
)

func newClientCmd() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "start interactive chat client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080/chat",
				Usage:   "chat server url",
				Aliases: []string{"s"},
				Sources: cli.EnvVars("GOCHAT_CLIENT_SERVER"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Value:   client.DefaultPollInterval,
				Usage:   "interval between fetching messages in chat room",
				Sources: cli.EnvVars("GOCHAT_CLIENT_POLL_INTERVAL"),
			},
			&cli.StringFlag{
				Name:      "log-file",
				Usage:     "write client logs to file; logs are disabled when empty",
				Sources:   cli.EnvVars("GOCHAT_CLIENT_LOGFILE"),
				Config:    cli.StringConfig{TrimSpace: true},
				TakesFile: true,
			},
		},
		Action: startClientCmd,
	}
}

func startClientCmd(ctx context.Context, clicmd *cli.Command) error {
	logfile, err := initializeClientLogger(clicmd.String("log.level"), clicmd.String("log-file"))
	if err != nil {
		return err
	}

	defer logfile.Close()

	ctx = log.Logger.WithContext(ctx)

	requester, err := client.NewRequester(clicmd.String("server"))
	if err != nil {
		return aerr.Wrapf(err, "invalid client configuration")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	view := client.NewConsoleView(os.Stdin, os.Stdout)
	chatClient := client.NewChatClient(requester, view, client.WithPollInterval(clicmd.Duration("poll-interval")))

	if err := chatClient.Run(ctx); err != nil {
		return aerr.Wrapf(err, "client error")
	}

	return nil
}
