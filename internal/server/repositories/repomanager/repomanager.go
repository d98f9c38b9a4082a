// Package repomanager constructs repositories over an arbitrary dbx.DBTX so
// services can use the same repositories inside and outside transactions.
package repomanager

import (
	"github.com/clipfeed/clipfeed/internal/dbx"
	"github.com/clipfeed/clipfeed/internal/server/repositories/refreshtokens"
	"github.com/clipfeed/clipfeed/internal/server/repositories/users"
	"github.com/clipfeed/clipfeed/internal/server/repositories/verifications"
	"github.com/clipfeed/clipfeed/internal/server/repositories/videos"
)

// RepoManager hands out repositories bound to a given handle.
type RepoManager interface {
	Users(db dbx.DBTX) users.Repository
	Verifications(db dbx.DBTX) verifications.Repository
	Videos(db dbx.DBTX) videos.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

type Postgres struct{}

func NewPostgres() *Postgres {
	return &Postgres{}
}

func (m *Postgres) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *Postgres) Verifications(db dbx.DBTX) verifications.Repository {
	return verifications.NewPostgresRepository(db)
}

func (m *Postgres) Videos(db dbx.DBTX) videos.Repository {
	return videos.NewPostgresRepository(db)
}

func (m *Postgres) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}
