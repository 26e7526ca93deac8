package moderation

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded view of the credential layer's token: just
// enough to know which principal this session belongs to. Minting and
// signature policy stay with the credential layer.
type SessionObject struct {
	PrincipalID string        `json:"principal_id,omitempty"`
	Kind        PrincipalKind `json:"kind,omitempty"`
	Issuer      string        `json:"issuer,omitempty"`
	IssuedAt    *time.Time    `json:"issued_at,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetPrincipalID() string {
	return s.PrincipalID
}

func (s *SessionObject) GetPrincipalUUID() (uuid.UUID, error) {
	return uuid.Parse(s.PrincipalID)
}

func (s *SessionObject) GetKind() PrincipalKind {
	return s.Kind
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

// Principal returns the ref the poller and admin transitions operate on.
func (s *SessionObject) Principal() (PrincipalRef, error) {
	id, err := s.GetPrincipalUUID()
	if err != nil {
		return PrincipalRef{}, err
	}

	kind, ok := ParseKind(s.Kind.String())
	if !ok {
		return PrincipalRef{}, ErrUnknownPrincipalKind
	}

	return PrincipalRef{ID: id, Kind: kind}, nil
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"principal=%s kind=%s iss=%s iat=%s",
		s.PrincipalID,
		s.Kind,
		s.Issuer,
		issuedAt,
	)
}

// SessionFromToken decodes an HS256 session token into a SessionObject.
// The principal id rides in "sub", the kind in "kind".
func SessionFromToken(token string, signingKey []byte) (*SessionObject, error) {
	if token == "" {
		return nil, ErrUnableToFindSession
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, ErrUnableToDecodeSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToMapClaims
	}

	return sessionFromClaims(claims)
}

func sessionFromClaims(claims jwt.MapClaims) (*SessionObject, error) {
	session := &SessionObject{
		Data: map[string]any{},
	}

	if sub, err := claims.GetSubject(); err == nil {
		session.PrincipalID = sub
	}
	if session.PrincipalID == "" {
		return nil, ErrUnableToMapClaims
	}

	if kind, ok := claims["kind"].(string); ok {
		session.Kind = PrincipalKind(kind)
	}

	if iss, err := claims.GetIssuer(); err == nil {
		session.Issuer = iss
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		session.IssuedAt = &iat.Time
	}

	for k, v := range claims {
		switch k {
		case "sub", "kind", "iss", "iat", "exp", "aud", "nbf":
		default:
			session.Data[k] = v
		}
	}

	return session, nil
}
