// Package pgx backs the storage ports with Postgres via pgxpool.
package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medgate/medgate/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.BackendStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}
