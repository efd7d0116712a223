// Package httpapi exposes the directory over HTTP. Handlers stay thin: they
// decode DTOs, call the directory and map its errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/frankly034/userdir/internal/logging"
	"github.com/frankly034/userdir/internal/server/auth"
	"github.com/frankly034/userdir/internal/server/directory"
	"github.com/frankly034/userdir/internal/server/models"
	"github.com/frankly034/userdir/internal/server/repositories/users"
)

const shutdownTimeout = 5 * time.Second

// Service is the slice of the directory the transport needs.
type Service interface {
	Find(ctx context.Context, filter users.Filter, actor *models.User) ([]*models.User, error)
	FindUnique(ctx context.Context, id string, actor *models.User) (*models.User, error)
	Create(ctx context.Context, dto directory.CreateUser) (*models.User, error)
	Update(ctx context.Context, dto directory.UpdateUser, actor *models.User) (*models.User, error)
	Delete(ctx context.Context, dto directory.DeleteUser, actor *models.User) (*models.User, error)
	Authenticate(ctx context.Context, dto directory.AuthenticateUser) (*models.User, error)
	AuthenticateAndIssueToken(ctx context.Context, dto directory.AuthenticateUser) (string, error)
	ValidateToken(rawHeaderValue string) (*auth.Claims, bool)
	ResolveActor(ctx context.Context, id string) (*models.User, error)
}

type Server struct {
	address string
	svc     Service
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, svc Service) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		svc:     svc,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
