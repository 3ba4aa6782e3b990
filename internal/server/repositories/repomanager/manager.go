package repomanager

import (
	"context"
	"database/sql"

	"pawpath/internal/dbx"
	"pawpath/internal/server/repositories/locations"
	"pawpath/internal/server/repositories/photos"
	"pawpath/internal/server/repositories/reviews"
	"pawpath/internal/server/repositories/sessions"
	"pawpath/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Locations(db dbx.DBTX) locations.Repository
	Reviews(db dbx.DBTX) reviews.Repository
	Photos(db dbx.DBTX) photos.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
