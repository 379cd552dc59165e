package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, now time.Time) *jwtService {
	t.Helper()
	svc, err := NewJWTService("test-secret-value", time.Hour)
	require.NoError(t, err)
	s := svc.(*jwtService)
	s.now = func() time.Time { return now }
	return s
}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, now)
	identity := Identity{ID: uuid.New(), Type: "Physician", Username: "drhouse", Email: "house@example.com"}

	token, issued, err := svc.GenerateToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.RegisteredClaims.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, identity, got)
	assert.Equal(t, issued.RegisteredClaims.ID, claims.RegisteredClaims.ID)
}

func TestValidateExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc := newTestService(t, issuedAt)
	token, _, err := svc.GenerateToken(Identity{ID: uuid.New(), Type: "Patient"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t, time.Now())
	other, err := NewJWTService("another-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := other.GenerateToken(Identity{ID: uuid.New(), Type: "Admin"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService(t, time.Now())
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ID: uuid.NewString()})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
