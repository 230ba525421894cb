// Package auth issues JWT access tokens to operators.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

const invalidCredentialsMessage = "invalid username or password"

// User is an operator account.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
}

// Service authenticates operators and signs access tokens.
type Service struct {
	pool *pgxpool.Pool
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// NewService creates an auth service.
func NewService(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{pool: pool, cfg: cfg, log: log}
}

// Login verifies the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, User, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.log.AuthEvent("login", username, false, "unknown user")
			return "", User{}, apperr.Unauthorized(invalidCredentialsMessage)
		}
		return "", User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.AuthEvent("login", username, false, "wrong password")
		return "", User{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return "", User{}, err
	}

	s.log.AuthEvent("login", username, true, "")
	return token, user, nil
}

// CreateUser registers an operator account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, username, password, role string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{Username: username, Role: role}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		username, string(hash), role,
	).Scan(&user.ID)
	if err != nil {
		return User{}, apperr.Conflict("username already taken")
	}

	s.log.Info("user created", "username", username, "role", role)
	return user, nil
}

func (s *Service) findByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	return user, err
}

func (s *Service) signAccessToken(user User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"type": "access",
		"role": user.Role,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTSecret()))
}
