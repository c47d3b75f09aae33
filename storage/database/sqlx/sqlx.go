// Package sqlxrepos provides PostgreSQL-backed repository implementations.
package sqlxrepos

import (
	"database/sql"

	"github.com/pkg/errors"
)

const driverName = "postgres"

// trapNoRowsErr converts sql.ErrNoRows into the owning package's sentinel
// so callers never see driver errors.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}
