package cli

//
// common.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/config"
	"gitlab.com/kabes/go-chat/internal/infra"
	"gitlab.com/kabes/go-chat/internal/repository"
	"gitlab.com/kabes/go-chat/internal/service"
)

const shutdownTimeout = 10 * time.Second

// wrap prepare logger, storage and injector for command.
func wrap(
	cmdfunc func(ctx context.Context, clicmd *cli.Command, i do.Injector) error,
) func(ctx context.Context, clicmd *cli.Command) error {
	return func(ctx context.Context, clicmd *cli.Command) error {
		if err := initializeLogger(clicmd.String("log.level"), clicmd.String("log.format")); err != nil {
			return err
		}

		ctx = log.Logger.WithContext(ctx)

		storeconf := config.NewStoreConf(clicmd.String("store.driver"), clicmd.String("store.connstr"))

		if err := storeconf.Validate(); err != nil {
			return aerr.Wrapf(err, "invalid store configuration")
		}

		injector := createInjector(ctx, storeconf)
		defer shutdownInjector(ctx, injector)

		repo := do.MustInvoke[repository.Repository](injector)
		if err := repo.Open(ctx); err != nil {
			return aerr.Wrapf(err, "connect to store failed")
		}

		if err := repo.Migrate(ctx); err != nil {
			return aerr.Wrapf(err, "prepare store failed")
		}

		return cmdfunc(ctx, clicmd, injector)
	}
}

func createInjector(ctx context.Context, storeconf config.StoreConf) *do.RootScope {
	injector := do.New(
		infra.Package,
		service.Package,
	)

	do.ProvideValue(injector, storeconf)

	logger := log.Ctx(ctx)
	logger.Debug().Msgf("Available services: %v", injector.ListProvidedServices())

	return injector
}

func shutdownInjector(ctx context.Context, injector *do.RootScope) {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger := log.Ctx(ctx)

	if report := injector.ShutdownWithContext(ctx); report != nil && len(report.Errors) > 0 {
		logger.Error().Msgf("shutdown services error: %s", report.Error())
	}
}

func enableDoDebug(ctx context.Context, injector do.Injector) {
	logger := log.Ctx(ctx)
	explanation := do.ExplainInjector(injector)
	logger.Debug().Msgf("Injector: %s", explanation.String())
}
