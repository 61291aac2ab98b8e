package service

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIDTokenVerifier struct {
	token *auth.Token
	err   error
}

func (f fakeIDTokenVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.token, f.err
}

func TestFirebaseVerifier(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		v := &FirebaseVerifier{client: fakeIDTokenVerifier{token: &auth.Token{
			UID:    "firebase-uid",
			Claims: map[string]interface{}{"email": "cook@example.com"},
		}}}

		identity, err := v.VerifyToken(context.Background(), "id-token")
		require.NoError(t, err)
		assert.Equal(t, "firebase-uid", identity.UID)
		assert.Equal(t, "cook@example.com", identity.Email)
	})

	t.Run("rejected token", func(t *testing.T) {
		v := &FirebaseVerifier{client: fakeIDTokenVerifier{err: errors.New("ID token has expired")}}

		_, err := v.VerifyToken(context.Background(), "id-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
