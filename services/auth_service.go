// Package services holds the business rules. Services take and return
// domain models, never touch HTTP, and reach the datastore only through
// repository interfaces. Multi-step writes run in database.WithTx with
// tx-bound repositories.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
	"github.com/photosunthesis/rate-stuff.online-sub001/repository"
)

const (
	tokenIssuer       = "rate-stuff.online"
	defaultBcryptCost = 12
)

// AuthService handles accounts, sessions and access tokens.
type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.AuthTokens, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	db             *sql.DB
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	jwtSecret      []byte
	accessExp      time.Duration
	refreshExp     time.Duration
	inviteRequired bool
	bcryptCost     int
}

// NewAuthService builds the service. With inviteRequired, every account
// after the first needs a usable invite code; the first account
// bootstraps the site.
func NewAuthService(
	db *sql.DB,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
	inviteRequired bool,
) AuthService {
	return &authService{
		db:             db,
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		jwtSecret:      []byte(jwtSecret),
		accessExp:      time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:     time.Duration(refreshExpDays) * 24 * time.Hour,
		inviteRequired: inviteRequired,
		bcryptCost:     defaultBcryptCost,
	}
}

// Register creates the account and consumes the invite in one transaction,
// so a failed insert never burns an invite use.
func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	user := &models.User{
		Username:     req.Username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txUsers := repository.NewSQLiteUserRepo(tx)

		if s.inviteRequired {
			count, err := txUsers.Count(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				if err := consumeInvite(ctx, repository.NewSQLiteInviteRepo(tx), req.InviteCode); err != nil {
					return err
				}
			}
		}

		return txUsers.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func consumeInvite(ctx context.Context, invites repository.InviteRepository, code string) error {
	if code == "" {
		return fmt.Errorf("%w: invite code is required", pkg.ErrBadRequest)
	}

	invite, err := invites.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid invite code", pkg.ErrBadRequest)
		}
		return err
	}
	if !invite.Usable(time.Now()) {
		return fmt.Errorf("%w: invite code expired or used up", pkg.ErrBadRequest)
	}

	if err := invites.IncrementUses(ctx, code); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invite code expired or used up", pkg.ErrBadRequest)
		}
		return err
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	return s.generateTokens(ctx, user)
}

// RefreshToken rotates the session: the presented token is spent whether
// or not it is still valid.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// Logout revokes the session. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.sessionRepo.DeleteByID(ctx, session.ID)
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ─── Private Helpers ───

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	accessString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshString := hex.EncodeToString(refreshBytes)

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshString,
		ExpiresAt:    now.Add(s.refreshExp),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	user.PasswordHash = ""

	return &models.AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		User:         user,
	}, nil
}
