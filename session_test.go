package moderation_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	moderation "github.com/goliatone/go-moderation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key")

func mintToken(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestSessionFromToken(t *testing.T) {
	id := uuid.New()
	issued := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	token := mintToken(t, jwt.MapClaims{
		"sub":  id.String(),
		"kind": "artist",
		"iss":  "marketplace",
		"iat":  issued.Unix(),
		"role": "performer",
	}, testSigningKey)

	session, err := moderation.SessionFromToken(token, testSigningKey)
	require.NoError(t, err)

	assert.Equal(t, id.String(), session.GetPrincipalID())
	assert.Equal(t, moderation.KindArtist, session.GetKind())
	assert.Equal(t, "marketplace", session.Issuer)
	require.NotNil(t, session.GetIssuedAt())
	assert.Equal(t, issued.Unix(), session.GetIssuedAt().Unix())
	assert.Equal(t, "performer", session.Data["role"])

	ref, err := session.Principal()
	require.NoError(t, err)
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, moderation.KindArtist, ref.Kind)
}

func TestSessionFromTokenEmpty(t *testing.T) {
	_, err := moderation.SessionFromToken("", testSigningKey)
	assert.ErrorIs(t, err, moderation.ErrUnableToFindSession)
}

func TestSessionFromTokenWrongKey(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"kind": "user",
	}, []byte("some-other-key"))

	_, err := moderation.SessionFromToken(token, testSigningKey)
	assert.ErrorIs(t, err, moderation.ErrUnableToDecodeSession)
}

func TestSessionFromTokenMissingSubject(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"kind": "user",
		"iss":  "marketplace",
	}, testSigningKey)

	_, err := moderation.SessionFromToken(token, testSigningKey)
	assert.ErrorIs(t, err, moderation.ErrUnableToMapClaims)
}

func TestSessionPrincipalRejectsUnknownKind(t *testing.T) {
	session := &moderation.SessionObject{
		PrincipalID: uuid.New().String(),
		Kind:        moderation.PrincipalKind("venue"),
	}

	_, err := session.Principal()
	assert.ErrorIs(t, err, moderation.ErrUnknownPrincipalKind)
}

func TestSessionPrincipalRejectsBadID(t *testing.T) {
	session := &moderation.SessionObject{
		PrincipalID: "not-a-uuid",
		Kind:        moderation.KindUser,
	}

	_, err := session.Principal()
	assert.Error(t, err)
}
