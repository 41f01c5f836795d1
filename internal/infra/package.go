// Package infra select and provide storage backend.
package infra

//
// package.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/config"
	"gitlab.com/kabes/go-chat/internal/infra/filestore"
	"gitlab.com/kabes/go-chat/internal/infra/pg"
	"gitlab.com/kabes/go-chat/internal/infra/sqlite"
	"gitlab.com/kabes/go-chat/internal/repository"
)

var Package = do.Package(
	do.Lazy(func(i do.Injector) (repository.Repository, error) {
		return NewRepository(do.MustInvoke[config.StoreConf](i))
	}),
)

// NewRepository create (not opened) repository for configured store.
func NewRepository(conf config.StoreConf) (repository.Repository, error) { //nolint:ireturn
	var (
		repo repository.Repository
		err  error
	)

	switch conf.Driver {
	case config.StoreFile:
		repo, err = filestore.NewRepository(conf.Connstr)
	case config.StoreSQLite:
		repo, err = sqlite.NewRepository(conf.Connstr)
	case config.StorePostgres:
		repo, err = pg.NewRepository(conf.Connstr)
	default:
		return nil, aerr.ErrInvalidConf.WithUserMsg("unsupported store driver %q", conf.Driver)
	}

	if err != nil {
		return nil, aerr.Wrapf(err, "create repository failed").WithMeta("driver", conf.Driver)
	}

	return repo, nil
}
