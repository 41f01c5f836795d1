package cli

//
// room.go
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

func newAddRoomCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "create chat room",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true, Aliases: []string{"n"}},
		},
		Action: wrap(addRoomCmd),
	}
}

//nolint:forbidigo
func addRoomCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	name := clicmd.String("name")
	chatSrv := do.MustInvoke[*service.ChatSrv](injector)

	if err := chatSrv.CreateRoom(ctx, &command.CreateRoomCmd{UserID: "admin", Name: name}); err != nil {
		return fmt.Errorf("create room error: %w", err)
	}

	fmt.Printf("Room %q created\n", name)

	return nil
}

// ---------------------------------------------------------------------

func newListRoomsCmd() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "list chat rooms",
		Action: wrap(listRoomsCmd),
	}
}

//nolint:forbidigo
func listRoomsCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	chatSrv := do.MustInvoke[*service.ChatSrv](injector)

	rooms, err := chatSrv.Rooms(ctx)
	if err != nil {
		return fmt.Errorf("get rooms error: %w", err)
	}

	for _, r := range rooms {
		fmt.Println(r.Name)
	}

	return nil
}
