package cli

//
// user.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/service"
)

//---------------------------------------------------------------------

func newAddUserCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "add new user account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true, Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Required: true, Aliases: []string{"p"}},
		},
		Action: wrap(addUserCmd),
	}
}

//nolint:forbidigo
func addUserCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	userID := clicmd.String("id")

	accountsSrv := do.MustInvoke[*service.AccountsSrv](injector)
	cmd := command.SignUpCmd{
		UserID:   userID,
		Password: clicmd.String("password"),
	}

	if err := accountsSrv.SignUp(ctx, &cmd); err != nil {
		return fmt.Errorf("add user error: %w", err)
	}

	fmt.Printf("User %q created\n", userID)

	return nil
}

// ---------------------------------------------------------------------

func newListUsersCmd() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "list user accounts",
		Action: wrap(listUsersCmd),
	}
}

//nolint:forbidigo
func listUsersCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	accountsSrv := do.MustInvoke[*service.AccountsSrv](injector)

	accounts, err := accountsSrv.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("get accounts error: %w", err)
	}

	fmt.Println("User ID")
	fmt.Println("------------------------------")

	for _, a := range accounts {
		fmt.Println(a.UserID)
	}

	return nil
}

// ---------------------------------------------------------------------

func newCheckUserCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "verify user credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true, Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Required: true, Aliases: []string{"p"}},
		},
		Action: wrap(checkUserCmd),
	}
}

//nolint:forbidigo
func checkUserCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	userID := clicmd.String("id")
	accountsSrv := do.MustInvoke[*service.AccountsSrv](injector)

	if _, err := accountsSrv.Login(ctx, userID, clicmd.String("password")); err != nil {
		return fmt.Errorf("check user error: %w", err)
	}

	fmt.Printf("User %q credentials valid\n", userID)

	return nil
}
