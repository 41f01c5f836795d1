package pg

//
// repository.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/db"
)

// Repository implement repository.Repository on PostgreSQL database.
type Repository struct {
	db *db.SQLDatabase
}

func NewRepository(connstr string) (*Repository, error) {
	database, err := newDatabase(connstr)
	if err != nil {
		return nil, err
	}

	return &Repository{db: database}, nil
}

func (r *Repository) Open(ctx context.Context) error {
	if err := r.db.Open(ctx); err != nil {
		return aerr.Wrapf(err, "open postgresql database failed")
	}

	return nil
}

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.Migrate(ctx, embedMigrations)
}

func (r *Repository) Shutdown(ctx context.Context) error {
	return r.db.Close(ctx)
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// RegisterMetrics register database stats for opened database.
func (r *Repository) RegisterMetrics(reg prometheus.Registerer, queryTime bool) {
	db.RegisterMetrics(reg, r.db.DB(), "postgres", queryTime)
}

// Clear remove all data from database.
func (r *Repository) Clear(ctx context.Context) error {
	return r.db.Exec(ctx, "TRUNCATE messages, rooms, accounts")
}
