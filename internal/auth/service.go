package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be admin or viewer")
	ErrUnavailable        = errors.New("admin database not configured")
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	AdminID string `json:"admin_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

var (
	hashPasswordFn    = bcrypt.GenerateFromPassword
	parseWithClaimsFn = jwt.ParseWithClaims
	signTokenFn       = func(s *Service, id Identity, ttl time.Duration) (string, error) {
		return s.signToken(id, ttl)
	}
)

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

// Register creates a dashboard account. Role defaults to viewer.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Admin, error) {
	if req.Email == "" || req.Password == "" {
		return Admin{}, errors.New("email and password required")
	}
	if req.Role == "" {
		req.Role = RoleViewer
	}
	if req.Role != RoleAdmin && req.Role != RoleViewer {
		return Admin{}, ErrInvalidRole
	}
	hash, err := hashPasswordFn([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Admin{}, err
	}

	if s.db == nil {
		return Admin{}, ErrUnavailable
	}

	admin := Admin{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO admins (id, email, password_hash, role)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, admin.ID, admin.Email, admin.PasswordHash, admin.Role)
	if err := row.Scan(&admin.CreatedAt); err != nil {
		return Admin{}, err
	}
	return admin, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Admin, TokenResponse, error) {
	if s.db == nil {
		return Admin{}, TokenResponse{}, ErrUnavailable
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM admins WHERE email = $1
	`, req.Email)

	var admin Admin
	if err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Role, &admin.CreatedAt); err != nil {
		return Admin{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return Admin{}, TokenResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.GenerateTokens(ctx, admin.Identity())
	if err != nil {
		return Admin{}, TokenResponse{}, err
	}
	return admin, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, id Identity) (TokenResponse, error) {
	access, err := signTokenFn(s, id, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := signTokenFn(s, id, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, id.AdminID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (Identity, error) {
	if s.db == nil {
		return Identity{}, ErrUnavailable
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Identity{}, err
	}

	adminID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || adminID != claims.AdminID || time.Now().After(expiresAt) {
		return Identity{}, errors.New("refresh token invalid")
	}
	return Identity{AdminID: claims.AdminID, Role: claims.Role}, nil
}

func (s *Service) ValidateAccessToken(token string) (Identity, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{AdminID: claims.AdminID, Role: claims.Role}, nil
}

func (s *Service) signToken(id Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		AdminID: id.AdminID,
		Role:    id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := parseWithClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, adminID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, admin_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), adminID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT admin_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var adminID string
	var expiresAt time.Time
	if err := row.Scan(&adminID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return adminID, expiresAt, nil
}
