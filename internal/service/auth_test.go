package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT(t *testing.T) {
	auth := NewAuthService("test-secret", time.Hour)

	token, err := auth.GenerateJWT("user-1")
	require.NoError(t, err)

	userID, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	other := NewAuthService("other-secret", time.Hour)
	_, err = other.VerifyJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewAuthService("test-secret", -time.Hour)
	old, err := expired.GenerateJWT("user-1")
	require.NoError(t, err)
	_, err = auth.VerifyJWT(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.VerifyJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := auth.GenerateJWT("")
	require.NoError(t, err)
	_, err = auth.VerifyJWT(noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer  abc ", want: "abc"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := BearerToken(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
