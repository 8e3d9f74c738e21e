package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentIDAcceptsStringAndNumber(t *testing.T) {
	var s struct {
		A ContentID `json:"a"`
		B ContentID `json:"b"`
		C ContentID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"abc123","b":42,"c":null}`), &s))
	assert.Equal(t, ContentID("abc123"), s.A)
	assert.Equal(t, ContentID("42"), s.B)
	assert.Equal(t, ContentID(""), s.C)
}

func TestContentIDCanonicalizesNumbers(t *testing.T) {
	tests := []struct {
		raw  string
		want ContentID
	}{
		{`42`, "42"},
		{`42.0`, "42"},
		{`1e2`, "100"},
		{`4.2E1`, "42"},
		{`-7.00`, "-7"},
		{`1.5`, "1.5"},
		{`"42.0"`, "42.0"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s Series
			require.NoError(t, json.Unmarshal([]byte(`{"_id":`+tt.raw+`}`), &s))
			assert.Equal(t, tt.want, s.ID)
		})
	}
}

func TestContentIDRejectsObjects(t *testing.T) {
	var id ContentID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestContentIDKeepsLeadingZerosQuoted(t *testing.T) {
	out, err := json.Marshal(ContentID("0042"))
	require.NoError(t, err)
	assert.Equal(t, `"0042"`, string(out))

	out, err = json.Marshal(ContentID("42"))
	require.NoError(t, err)
	assert.Equal(t, `42`, string(out))
}

func TestIdentityNormalizesID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mongo style", `{"_id":"u1","username":"kaori"}`, "u1"},
		{"plain id", `{"id":"u2","username":"kaori"}`, "u2"},
		{"numeric id", `{"id":7}`, "7"},
		{"underscore wins", `{"_id":"a","id":"b"}`, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u Identity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			assert.Equal(t, tt.want, u.ID)
		})
	}
}

func TestLoginResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		shape    LoginShape
		token    string
		identity string
		hasIdent bool
	}{
		{"nested", `{"token":"t1","user":{"_id":"u1","email":"a@b.c"}}`, LoginShapeNested, "t1", "u1", true},
		{"direct", `{"token":"t2","_id":"u2","username":"kaori"}`, LoginShapeDirect, "t2", "u2", true},
		{"direct without token", `{"id":"u3"}`, LoginShapeDirect, "", "u3", true},
		{"token only", `{"token":"t4","message":"ok"}`, LoginShapeTokenOnly, "t4", "", false},
		{"null user", `{"token":"t5","user":null}`, LoginShapeTokenOnly, "t5", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r LoginResponse
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.shape, r.Shape)
			assert.Equal(t, tt.token, r.Token)
			if tt.hasIdent {
				require.NotNil(t, r.Identity)
				assert.Equal(t, tt.identity, r.Identity.ID)
			} else {
				assert.Nil(t, r.Identity)
			}
		})
	}
}

func TestSameIdentity(t *testing.T) {
	a := &Identity{ID: "1"}
	assert.True(t, SameIdentity(nil, nil))
	assert.False(t, SameIdentity(a, nil))
	assert.False(t, SameIdentity(nil, a))
	assert.True(t, SameIdentity(a, &Identity{ID: "1", Username: "renamed"}))
	assert.False(t, SameIdentity(a, &Identity{ID: "2"}))
}

func TestSeriesDisplayHelpers(t *testing.T) {
	s := Series{Title: "Frieren", ReleaseDate: "2023-09-29", Rating: 9.14}
	assert.Equal(t, "Frieren (2023)", s.GetDisplayName())
	assert.Equal(t, "★ 9.1", s.GetRatingDisplay())
	assert.Equal(t, "Ongoing", s.GetStatusDisplay())

	s = Series{Title: "Untitled", Status: "Completed"}
	assert.Equal(t, "Untitled", s.GetDisplayName())
	assert.Empty(t, s.GetRatingDisplay())
	assert.Equal(t, "Completed", s.GetStatusDisplay())
}
