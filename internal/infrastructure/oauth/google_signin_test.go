package oauth

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"propdesk-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestIDTokenVerifier(t *testing.T) {
	v := &IDTokenVerifier{
		audience: "client-1",
		validate: func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			if token != "good" || audience != "client-1" {
				return nil, errors.New("bad signature")
			}
			return &idtoken.Payload{
				Subject: "uid-1",
				Claims:  map[string]interface{}{"email": "a@b.co", "name": "Ann"},
			}, nil
		},
	}

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &Identity{UID: "uid-1", Email: "a@b.co", Name: "Ann"}, id)

	_, err = v.Verify(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDevVerifier(t *testing.T) {
	id, err := DevVerifier{UID: "dev"}.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "dev", id.UID)
}

func TestAuthURL(t *testing.T) {
	g := NewGoogleSignIn("cid", "secret", "http://localhost/auth/callback", logger.NewNop())
	u, err := url.Parse(g.AuthURL("xyz"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "openid")
}
