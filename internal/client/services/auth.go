// Package services contains application services for the MealTrack terminal
// client: authentication with a resumable local session, daily log access,
// and the debounced food search session.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mealtrack/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// All methods honor context cancellation.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	Resume(ctx context.Context) (string, error)
	SaveSession(ctx context.Context) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and
// the local session database.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Register creates a new account on the server. It does not log in.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	return a.client.Register(ctx, username, string(password))
}

// Login authenticates against the server and stores the session locally so
// the next start can resume it.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	if err := a.client.Login(ctx, username, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.saveSession(ctx, username, a.client.RefreshToken()); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, username, refreshToken string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyUsername, []byte(username)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, []byte(refreshToken))
	})
}

// Resume restores the saved session and returns its username. A session the
// server no longer accepts is wiped and reported as client.ErrUnauthorized.
func (a *authService) Resume(ctx context.Context) (string, error) {
	repo := a.getMetadataRepo(a.db)

	username, err := repo.Get(ctx, metadata.KeyUsername)
	if err != nil {
		return "", err
	}
	refreshToken, err := repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if len(username) == 0 || len(refreshToken) == 0 {
		return "", client.ErrNoSession
	}

	if err := a.client.Resume(ctx, string(refreshToken)); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = repo.Clear(ctx)
		}
		return "", err
	}
	if err := repo.Set(ctx, metadata.KeyRefreshToken, []byte(a.client.RefreshToken())); err != nil {
		return "", err
	}
	return string(username), nil
}

// SaveSession persists the current refresh token when the client rotated it
// during a transparent token refresh.
func (a *authService) SaveSession(ctx context.Context) error {
	current := a.client.RefreshToken()
	if current == "" {
		return nil
	}
	repo := a.getMetadataRepo(a.db)
	saved, err := repo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return err
	}
	if string(saved) == current {
		return nil
	}
	return repo.Set(ctx, metadata.KeyRefreshToken, []byte(current))
}

// Logout revokes the session on the server and wipes it locally. The local
// session is removed even when the server cannot be reached.
func (a *authService) Logout(ctx context.Context) error {
	remoteErr := a.client.Logout(ctx)
	if err := a.getMetadataRepo(a.db).Clear(ctx); err != nil {
		return err
	}
	return remoteErr
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
