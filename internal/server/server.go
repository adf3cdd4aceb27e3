package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nretro/retrosync/internal/db"
)

type Server struct {
	config   *Config
	server   *http.Server
	db       *sqlx.DB
	services *Services
}

func New(config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sqliteDB, err := db.NewSqliteDB(db.WithPath(config.DBPath))
	if err != nil {
		return nil, err
	}

	services, err := NewServices(config, sqliteDB)
	if err != nil {
		sqliteDB.Close()
		return nil, err
	}

	return &Server{
		config:   config,
		db:       sqliteDB,
		services: services,
		server: &http.Server{
			Addr:    config.HTTP.Addr,
			Handler: SetupRoutes(services),
		},
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("retrosync server start")
	defer slog.Info("retrosync server stop")

	go func() {
		if err := s.runHTTPServer(); err != nil && err != http.ErrServerClosed {
			slog.Error("server start error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("retrosync shutdown signal")
	if err := s.Stop(ctx); err != nil {
		slog.Error("retrosync shutdown error", "error", err)
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Server) runHTTPServer() error {
	if s.config.HTTP.CertFile != "" && s.config.HTTP.KeyFile != "" {
		slog.Info("server start tls", "addr", s.config.HTTP.Addr, "cert", s.config.HTTP.CertFile, "key", s.config.HTTP.KeyFile)
		return s.server.ListenAndServeTLS(s.config.HTTP.CertFile, s.config.HTTP.KeyFile)
	}
	slog.Info("server start http", "addr", s.config.HTTP.Addr)
	return s.server.ListenAndServe()
}
