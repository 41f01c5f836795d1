// Package filestore implement chat repository in plain text files.
package filestore

//
// filestore.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/model"
)

const (
	AccountsFile     = "accounts.txt"
	ChatRoomsFile    = "chat_rooms.txt"
	ChatMessagesFile = "chat_messages.txt"

	accountDelimiter = ","
	messageDelimiter = "|"

	fileMode = 0o600
	dirMode  = 0o700
)

var ErrParse = aerr.NewSimple("parse file failed").WithTag(aerr.DataError)

// Repository keep all data in memory and append every change to files in
// directory.
type Repository struct {
	dir string

	mu       sync.RWMutex
	accounts map[string]string
	rooms    []string
	messages map[string][]model.ChatMessage
}

func NewRepository(dir string) (*Repository, error) {
	if dir == "" {
		return nil, aerr.ErrInvalidConf.WithUserMsg("invalid (empty) file store directory")
	}

	return &Repository{dir: dir}, nil
}

// Open load all files; missing files are created.
func (r *Repository) Open(ctx context.Context) error {
	logger := log.Ctx(ctx)
	logger.Debug().Msgf("filestore.Repository: loading data from %q", r.dir)

	if err := os.MkdirAll(r.dir, dirMode); err != nil {
		return aerr.ApplyFor(aerr.ErrStorage, err, "", "create store directory failed").WithMeta("dir", r.dir)
	}

	accounts := make(map[string]string)
	if err := r.loadFile(AccountsFile, func(line string) error {
		id, pwd, err := parseAccountLine(line)
		if err != nil {
			return err
		}

		accounts[id] = pwd

		return nil
	}); err != nil {
		return err
	}

	var rooms []string

	known := make(map[string]struct{})
	if err := r.loadFile(ChatRoomsFile, func(line string) error {
		if _, ok := known[line]; ok {
			return aerr.Wrapf(ErrParse, "duplicated room %q", line)
		}

		known[line] = struct{}{}
		rooms = append(rooms, line)

		return nil
	}); err != nil {
		return err
	}

	messages := make(map[string][]model.ChatMessage)
	if err := r.loadFile(ChatMessagesFile, func(line string) error {
		msg, err := parseMessageLine(line)
		if err != nil {
			return err
		}

		messages[msg.Room] = append(messages[msg.Room], msg)

		return nil
	}); err != nil {
		return err
	}

	r.mu.Lock()
	r.accounts = accounts
	r.rooms = rooms
	r.messages = messages
	r.mu.Unlock()

	logger.Info().Msgf("filestore.Repository: loaded accounts=%d rooms=%d", len(accounts), len(rooms))

	return nil
}

// Migrate do nothing; files have no schema.
func (r *Repository) Migrate(_ context.Context) error {
	return nil
}

func (r *Repository) Shutdown(_ context.Context) error {
	return nil
}

func (r *Repository) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(r.dir); err != nil {
		return aerr.ApplyFor(aerr.ErrStorage, err, "", "store directory not available")
	}

	return nil
}

//------------------------------------------------------------------------------

func (r *Repository) loadFile(name string, parse func(string) error) error {
	filename := filepath.Join(r.dir, name)

	file, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, fileMode)
	if err != nil {
		return aerr.ApplyFor(aerr.ErrStorage, err, "", "open file failed").WithMeta("file", filename)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineno := 0

	for scanner.Scan() {
		lineno++

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if err := parse(line); err != nil {
			return aerr.Wrapf(err, "parse file failed").WithMeta("file", filename).WithMeta("line", lineno)
		}
	}

	if err := scanner.Err(); err != nil {
		return aerr.ApplyFor(aerr.ErrStorage, err, "", "read file failed").WithMeta("file", filename)
	}

	return nil
}

func (r *Repository) appendLine(name, line string) error {
	filename := filepath.Join(r.dir, name)

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_APPEND|os.O_CREATE, fileMode)
	if err != nil {
		return aerr.ApplyFor(aerr.ErrStorage, err, "", "open file for append failed").WithMeta("file", filename)
	}

	if _, err := fmt.Fprintln(file, line); err != nil {
		file.Close()

		return aerr.ApplyFor(aerr.ErrStorage, err, "", "write file failed").WithMeta("file", filename)
	}

	if err := file.Close(); err != nil {
		return aerr.ApplyFor(aerr.ErrStorage, err, "", "close file failed").WithMeta("file", filename)
	}

	return nil
}

//------------------------------------------------------------------------------

// parseAccountLine split `id,password` line. Delimiter must occur exactly
// once, not at start or end of line.
func parseAccountLine(line string) (string, string, error) {
	idx := strings.Index(line, accountDelimiter)
	if idx <= 0 || idx == len(line)-1 || strings.Contains(line[idx+1:], accountDelimiter) {
		return "", "", aerr.Wrapf(ErrParse, "invalid account line")
	}

	return line[:idx], line[idx+1:], nil
}

func formatMessageLine(msg *model.ChatMessage) string {
	return strings.Join([]string{
		strconv.FormatInt(msg.Date.Unix(), 10),
		msg.UserID,
		msg.Room,
		msg.Message,
	}, messageDelimiter)
}

// parseMessageLine parse `date|user_id|room|message` line. Message may
// contain delimiter.
func parseMessageLine(line string) (model.ChatMessage, error) {
	const fields = 4

	parts := strings.SplitN(line, messageDelimiter, fields)
	if len(parts) != fields || parts[0] == "" || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return model.ChatMessage{}, aerr.Wrapf(ErrParse, "invalid message line")
	}

	date, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return model.ChatMessage{}, aerr.Wrapf(err, "invalid message date").WithTag(aerr.DataError)
	}

	return model.ChatMessage{
		Date:    time.Unix(date, 0),
		UserID:  parts[1],
		Room:    parts[2],
		Message: parts[3],
	}, nil
}
