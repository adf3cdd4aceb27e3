package server

import (
	"github.com/jmoiron/sqlx"

	"github.com/nretro/retrosync/internal/notionsync"
	"github.com/nretro/retrosync/internal/server/auth"
	"github.com/nretro/retrosync/internal/store"
)

type Services struct {
	Store     *store.Store
	Auth      *auth.AuthService
	Grants    *notionsync.GrantService
	Publisher *notionsync.Publisher
}

func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	st, err := store.New(db)
	if err != nil {
		return nil, err
	}

	authSvc := auth.NewAuthService(&config.Auth, st.Users)
	grantSvc := notionsync.NewGrantService(st.Users, &config.Notion)
	publisher := notionsync.NewPublisher(st, grantSvc)

	return &Services{
		Store:     st,
		Auth:      authSvc,
		Grants:    grantSvc,
		Publisher: publisher,
	}, nil
}
