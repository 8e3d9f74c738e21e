package models

import (
	"encoding/json"
)

// Identity is the authenticated principal held by the session
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UnmarshalJSON normalizes the backend's `_id` (or `id`) into ID
func (u *Identity) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID  ContentID `json:"_id"`
		ID       ContentID `json:"id"`
		Username string    `json:"username"`
		Email    string    `json:"email"`
		Role     string    `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = string(raw.MongoID)
	if u.ID == "" {
		u.ID = string(raw.ID)
	}
	u.Username = raw.Username
	u.Email = raw.Email
	u.Role = raw.Role
	return nil
}

// SameIdentity reports whether a and b name the same principal (both absent counts as same)
func SameIdentity(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the profile edit payload
type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginShape tags the form a credential-exchange response arrived in
type LoginShape int

const (
	// LoginShapeTokenOnly carries a token but no identity fields
	LoginShapeTokenOnly LoginShape = iota
	// LoginShapeDirect carries identity fields at the top level
	LoginShapeDirect
	// LoginShapeNested carries identity under "user"
	LoginShapeNested
)

func (s LoginShape) String() string {
	switch s {
	case LoginShapeDirect:
		return "direct"
	case LoginShapeNested:
		return "nested"
	default:
		return "token-only"
	}
}

// LoginResponse is the decoded credential-exchange response
type LoginResponse struct {
	Shape    LoginShape
	Token    string
	Identity *Identity
}

// HasToken reports whether the backend issued an access token
func (r *LoginResponse) HasToken() bool { return r.Token != "" }

// UnmarshalJSON decides the shape explicitly instead of probing fields at use sites
func (r *LoginResponse) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Token   string          `json:"token"`
		User    json.RawMessage `json:"user"`
		MongoID ContentID       `json:"_id"`
		ID      ContentID       `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	r.Token = envelope.Token
	r.Identity = nil
	r.Shape = LoginShapeTokenOnly

	switch {
	case len(envelope.User) > 0 && string(envelope.User) != "null":
		var id Identity
		if err := json.Unmarshal(envelope.User, &id); err != nil {
			return err
		}
		r.Shape = LoginShapeNested
		r.Identity = &id
	case envelope.MongoID != "" || envelope.ID != "":
		var id Identity
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.Shape = LoginShapeDirect
		r.Identity = &id
	}
	return nil
}
