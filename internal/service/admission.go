package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vogiaan1904/ticketbottle-servicequeue/config"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
)

// admissionIssuer signs short-lived tokens handed out when an entry is
// called, so staff kiosks can verify the guest stepping forward.
type admissionIssuer struct {
	secret []byte
	expiry time.Duration
}

func newAdmissionIssuer(cfg config.JWTConfig) *admissionIssuer {
	return &admissionIssuer{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
	}
}

func (a *admissionIssuer) Issue(e *domain.QueueEntry) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"entry_id":   e.ID,
		"user_id":    e.UserID,
		"service_id": e.ServiceID,
		"exp":        now.Add(a.expiry).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admission token: %w", err)
	}

	return signed, nil
}

// Verify returns the entry id the token was issued for.
func (a *admissionIssuer) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrTokenEmpty
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return "", ErrTokenInvalid
	}

	entryID, _ := claims["entry_id"].(string)
	if entryID == "" {
		return "", ErrTokenInvalid
	}

	return entryID, nil
}
