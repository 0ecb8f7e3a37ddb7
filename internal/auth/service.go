// Package auth issues and validates admin session tokens. Sessions are
// server-signed expiring JWTs checked on every privileged call; possession
// of an old token is never enough on its own.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/becalab/becamap/internal/models"
)

const tokenTTL = 24 * time.Hour

var (
	ErrInvalidCreds = errors.New("invalid credentials")

	jwtSecretOnce    sync.Once
	jwtSecretRuntime []byte
	jwtSecretErr     error
)

func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("failed to generate JWT fallback secret: %w", err)
			return
		}

		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Print("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}

	return jwtSecretRuntime, nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      models.AdminUser `json:"user"`
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Login checks the username/password pair against admin_users and returns a
// fresh expiring token. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user models.AdminUser
	err := s.db.QueryRow(ctx, `
		SELECT id, username, full_name, password_hash, created_at
		FROM admin_users WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(req.Username))).Scan(
		&user.ID, &user.Username, &user.FullName, &user.PasswordHash, &user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	expiresAt := time.Now().Add(tokenTTL)
	token, err := generateToken(user.ID, expiresAt)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CreateAdmin provisions a dashboard account. Used by the seed tool, there
// is no self-service signup surface.
func (s *Service) CreateAdmin(ctx context.Context, username, fullName, password string) (*models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	var user models.AdminUser
	err = s.db.QueryRow(ctx, `
		INSERT INTO admin_users (username, full_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET full_name = EXCLUDED.full_name, password_hash = EXCLUDED.password_hash
		RETURNING id, username, full_name, created_at
	`, strings.ToLower(strings.TrimSpace(username)), fullName, string(hash)).Scan(
		&user.ID, &user.Username, &user.FullName, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return &user, nil
}

func generateToken(userID uuid.UUID, expiresAt time.Time) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}
