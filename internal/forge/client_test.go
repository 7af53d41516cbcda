package forge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"cards": [
		{
			"id": "g_sprint",
			"name": "Focused Sprint",
			"description": "Twenty-five minutes on one thing.",
			"type": "action",
			"rarity": "uncommon",
			"tags": ["work"],
			"energy_cost": 12,
			"impact": 18
		}
	],
	"reasoning": "Short sessions fit low energy."
}`

func TestSuggest_ValidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cards/suggest", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(validPayload))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	got, err := c.Suggest(context.Background(), PromptContext{Class: "sage", Level: 3, Energy: 40, MaxEnergy: 100})
	require.NoError(t, err)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "g_sprint", got.Cards[0].ID)
	assert.NotEmpty(t, got.Reasoning)
}

func TestSuggest_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Suggest(context.Background(), PromptContext{})
	require.Error(t, err)
}

func TestParseSuggestion_RejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `this is prose, not JSON`},
		{"empty card list", `{"cards": [], "reasoning": "nothing"}`},
		{"missing name", `{"cards": [{"id": "x", "type": "action", "rarity": "common"}]}`},
		{"bad enum", `{"cards": [{"id": "x", "name": "X", "type": "miracle", "rarity": "common"}]}`},
		{"bad rarity", `{"cards": [{"id": "x", "name": "X", "type": "action", "rarity": "cosmic"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSuggestion([]byte(tc.raw))
			require.ErrorIs(t, err, ErrInvalidContent)
		})
	}
}

func TestParseSuggestion_Valid(t *testing.T) {
	got, err := ParseSuggestion([]byte(validPayload))
	require.NoError(t, err)
	assert.Len(t, got.Cards, 1)
}
