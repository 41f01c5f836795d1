package config

//
// store.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"gitlab.com/kabes/go-chat/internal/aerr"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite3"
	StorePostgres = "postgres"
)

// StoreConf select storage backend. For `file` store Connstr is directory
// where account, room and message files are kept.
type StoreConf struct {
	Driver  string
	Connstr string
}

func NewStoreConf(driver, connstr string) StoreConf {
	return StoreConf{
		Driver:  mapDriverName(driver),
		Connstr: connstr,
	}
}

func (d *StoreConf) Validate() error {
	if d.Connstr == "" {
		return aerr.ErrValidation.WithUserMsg("store.connstr argument can't be empty")
	}

	switch d.Driver {
	case "":
		return aerr.ErrValidation.WithUserMsg("store.driver argument can't be empty")
	case StoreFile, StoreSQLite, StorePostgres:
		return nil
	default:
		return aerr.ErrValidation.WithUserMsg("invalid (unsupported) store.driver %q", d.Driver)
	}
}

func (d *StoreConf) IsSQL() bool {
	return d.Driver == StoreSQLite || d.Driver == StorePostgres
}

func mapDriverName(driver string) string {
	switch driver {
	case "file", "files", "txt":
		return StoreFile
	case "sqlite", "sqlite3":
		return StoreSQLite
	case "pg", "postgresql", "postgres":
		return StorePostgres
	}

	return driver
}
