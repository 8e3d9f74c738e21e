package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astroflix-site/reistream/internal/models"
)

func TestResolveLoginDecisionTable(t *testing.T) {
	inline := &models.Identity{ID: "inline"}
	fetched := &models.Identity{ID: "fetched"}
	boom := errors.New("boom")

	tests := []struct {
		name     string
		resp     models.LoginResponse
		fetched  *models.Identity
		fetchErr error
		want     string
	}{
		{"token, inline, fetch ok", models.LoginResponse{Token: "t", Identity: inline}, fetched, nil, "fetched"},
		{"token, no inline, fetch ok", models.LoginResponse{Token: "t"}, fetched, nil, "fetched"},
		{"token, inline, fetch failed", models.LoginResponse{Token: "t", Identity: inline}, nil, boom, "inline"},
		{"token, no inline, fetch failed", models.LoginResponse{Token: "t"}, nil, boom, ""},
		{"no token, inline", models.LoginResponse{Identity: inline}, nil, nil, "inline"},
		{"no token, nothing", models.LoginResponse{}, nil, nil, ""},
		{"inline without id counts as absent", models.LoginResponse{Token: "t", Identity: &models.Identity{}}, nil, boom, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveLogin(&tt.resp, tt.fetched, tt.fetchErr)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want, got.ID)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	valid := models.RegisterRequest{Username: "kaori01", Email: "k@example.com", Password: "password1"}
	tests := []struct {
		name    string
		req     models.RegisterRequest
		confirm string
		want    error
	}{
		{"valid", valid, "password1", nil},
		{"missing email", models.RegisterRequest{Username: "kaori01", Password: "password1"}, "password1", ErrMissingFields},
		{"mismatch", valid, "password2", ErrPasswordMismatch},
		{"short username", models.RegisterRequest{Username: "kao", Email: "k@example.com", Password: "password1"}, "password1", ErrUsernameTooShort},
		{"short password", models.RegisterRequest{Username: "kaori01", Email: "k@example.com", Password: "pass"}, "pass", ErrPasswordTooShort},
		{"short multibyte username", models.RegisterRequest{Username: "ユーザー", Email: "k@example.com", Password: "password1"}, "password1", ErrUsernameTooShort},
		{"multibyte username at minimum", models.RegisterRequest{Username: "かおりちゃん", Email: "k@example.com", Password: "password1"}, "password1", nil},
		{"short multibyte password", models.RegisterRequest{Username: "kaori01", Email: "k@example.com", Password: "パスワード"}, "パスワード", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.req, tt.confirm)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
