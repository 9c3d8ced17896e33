// Package db wires the postgres connection, runs the embedded migrations and
// hands out the repositories built on it.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/keepintouch/internal/server/subscriptions"
	"github.com/dmitrijs2005/keepintouch/internal/storage/pgstore"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Store() *pgstore.Store
	Subscriptions() subscriptions.Repository
	Close() error
}
