package repository

import (
	"github.com/jmoiron/sqlx"
)

// queryer returns tx when the caller is inside a transaction, db otherwise.
func queryer(db *sqlx.DB, tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return db
}
