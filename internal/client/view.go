package client

//
// view.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gitlab.com/kabes/go-chat/internal/model"
	"golang.org/x/term"
)

// View interact with user.
type View interface {
	// Input show prompt and return line entered by user (without new line).
	Input(prompt string) (string, error)
	// Password read secret without echo when possible.
	Password(prompt string) (string, error)
	Message(format string, args ...any)
	ShowRooms(rooms []model.ChatRoom)
	ShowMessages(room string, msgs []model.ChatMessage)
}

//-------------------------------------------------------------

// ConsoleView is View working on terminal. Output is safe for concurrent use.
type ConsoleView struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	fd       int
	terminal bool
}

func NewConsoleView(in *os.File, out io.Writer) *ConsoleView {
	fd := int(in.Fd()) //nolint:gosec

	return &ConsoleView{
		in:       bufio.NewReader(in),
		out:      out,
		fd:       fd,
		terminal: term.IsTerminal(fd),
	}
}

func (c *ConsoleView) Input(prompt string) (string, error) {
	c.print(prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err //nolint:wrapcheck
	}

	return strings.TrimSpace(line), nil
}

func (c *ConsoleView) Password(prompt string) (string, error) {
	if !c.terminal {
		return c.Input(prompt)
	}

	c.print(prompt)

	pass, err := term.ReadPassword(c.fd)
	c.print("\n")

	if err != nil {
		return "", fmt.Errorf("read password error: %w", err)
	}

	return strings.TrimSpace(string(pass)), nil
}

func (c *ConsoleView) Message(format string, args ...any) {
	c.print(fmt.Sprintf(format, args...) + "\n")
}

func (c *ConsoleView) ShowRooms(rooms []model.ChatRoom) {
	var b strings.Builder

	b.WriteString("Chat rooms:\n")

	if len(rooms) == 0 {
		b.WriteString("  (none)\n")
	}

	for _, r := range rooms {
		b.WriteString("  - " + r.Name + "\n")
	}

	c.print(b.String())
}

func (c *ConsoleView) ShowMessages(room string, msgs []model.ChatMessage) {
	var b strings.Builder

	b.WriteString("---- [" + room + "] ----\n")

	for _, m := range msgs {
		b.WriteString(m.String() + "\n")
	}

	b.WriteString("----\n")

	c.print(b.String())
}

func (c *ConsoleView) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = io.WriteString(c.out, s)
}
