package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const hashCost = 12

// HashAccessKey returns the bcrypt hash the service checks keys against.
func HashAccessKey(key string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash access key: %w", err)
	}
	return hash, nil
}

// Service trades the shared access key for short-lived bearer tokens and
// validates them.
type Service struct {
	jwtSecret     []byte
	accessKeyHash []byte
	ttl           time.Duration
	now           func() time.Time
}

func NewService(jwtSecret string, accessKeyHash []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		jwtSecret:     []byte(jwtSecret),
		accessKeyHash: accessKeyHash,
		ttl:           ttl,
		now:           time.Now,
	}
}

type TokenResult struct {
	Token     string `json:"token"`
	Editor    string `json:"editor"`
	ExpiresAt string `json:"expiresAt"`
}

// Login checks accessKey and issues a token naming editor.
func (s *Service) Login(accessKey, editor string) (*TokenResult, error) {
	if err := bcrypt.CompareHashAndPassword(s.accessKeyHash, []byte(accessKey)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.issueToken(editor)
	if err != nil {
		return nil, err
	}
	return &TokenResult{
		Token:     token,
		Editor:    editor,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
	}, nil
}

// ValidateToken returns the editor named by a valid token.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	editor, ok := claims["sub"].(string)
	if !ok || editor == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return editor, nil
}

func (s *Service) issueToken(editor string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub": editor,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, exp, nil
}
