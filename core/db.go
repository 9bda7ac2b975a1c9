package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor can run queries against the database; satisfied by both
	// *sqlx.DB and *sqlx.Tx so repositories work inside and outside transactions.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		// RunInTx runs fn within a transaction; it is rolled back when fn
		// returns an error and committed otherwise.
		RunInTx(ctx context.Context, fn func(exec DBExecutor) error) error
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
