package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/internal/history"
	pkgAuth "github.com/azulretail/pos-backend/pkg/auth"
	"github.com/azulretail/pos-backend/pkg/config"
	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/security"
	"github.com/azulretail/pos-backend/pkg/types"
)

// invalidCredentials is deliberately identical for unknown usernames and bad
// passwords.
const invalidCredentials = "incorrect username or password"

type auditRecorder interface {
	Record(ctx context.Context, input history.RecordInput) error
}

// Service exposes identity operations.
type Service interface {
	Login(ctx context.Context, username, password string, meta types.RequestMeta) (*LoginResultDTO, error)
	ChangePassword(ctx context.Context, userID int64, current, newPassword, confirm string, meta types.RequestMeta) error
	Logout(ctx context.Context, userID int64) error
}

type service struct {
	repo        Repository
	history     auditRecorder
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds an auth service with the provided dependencies.
func NewService(repo Repository, recorder auditRecorder, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:        repo,
		history:     recorder,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, username, password string, meta types.RequestMeta) (*LoginResultDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.repo.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentials)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentials)
	}

	now := s.now()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:             user.ID,
		Username:           user.Username,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Role:               user.Role,
		PhotoURL:           user.PhotoURL,
		MustChangePassword: user.MustChangePassword,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	if err := s.repo.UpsertSession(ctx, &models.Session{
		UserID:       user.ID,
		Token:        token,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		LastActivity: now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      user.ID,
		Action:      enums.AuditActionLogin,
		Description: fmt.Sprintf("User %s logged in", user.Username),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	return &LoginResultDTO{
		Token:              token,
		UserID:             user.ID,
		Username:           user.Username,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Role:               user.Role,
		PhotoURL:           user.PhotoURL,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func (s *service) ChangePassword(ctx context.Context, userID int64, current, newPassword, confirm string, meta types.RequestMeta) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	ok, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect")
	}
	if newPassword != confirm {
		return pkgerrors.New(pkgerrors.CodeValidation, "password confirmation does not match")
	}
	if len(newPassword) < s.passwordCfg.MinLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", s.passwordCfg.MinLength))
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}

	return s.history.Record(ctx, history.RecordInput{
		UserID:      user.ID,
		Action:      enums.AuditActionPasswordReset,
		Description: fmt.Sprintf("User %s changed their password", user.Username),
		Meta:        meta,
	})
}

// Logout drops the durable session row. The bearer token itself remains
// valid until it expires; the short TTL bounds the exposure.
func (s *service) Logout(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteSessionByUserID(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	return nil
}
