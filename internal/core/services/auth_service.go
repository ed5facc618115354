package services

import (
	"errors"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// AuthService issues and validates the JWTs that front a session.
// A token only proves who the session belongs to; the session record itself decides whether it is still open.
type AuthService interface {
	IssueTokens(session *domain.Session) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type Claims struct {
	UserID    domain.UserID    `json:"uid"`
	Role      domain.UserRole  `json:"role"`
	SessionID domain.SessionID `json:"sid"`
	TokenType TokenType        `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type authService struct {
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(jwtSecret string, accessTokenTTL, refreshTokenTTL time.Duration) AuthService {
	return &authService{
		jwtSecret:       []byte(jwtSecret),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (s *authService) IssueTokens(session *domain.Session) (*TokenPair, error) {
	access, err := s.sign(session, AccessToken, s.accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(session, RefreshToken, s.refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) sign(session *domain.Session, typ TokenType, ttl time.Duration) (string, error) {
	now := utils.Now()
	claims := &Claims{
		UserID:    session.User.ID,
		Role:      session.User.Role,
		SessionID: session.ID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(session.User.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, AccessToken)
}

func (s *authService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, RefreshToken)
}

func (s *authService) validate(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(utils.Now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != want || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
