package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/stylechat/internal/config"
	"github.com/zhouzirui/stylechat/internal/model/variant"
	"github.com/zhouzirui/stylechat/internal/service/ai"
	chatService "github.com/zhouzirui/stylechat/internal/service/chat"
)

func newTestRouter(t *testing.T, variantID string, model ai.Model) http.Handler {
	t.Helper()
	store := variant.NewMemoryStore(variant.Seed())
	active, ok := store.FindByID(variantID)
	require.True(t, ok)

	chatSvc := chatService.NewService(model, chatService.Options{Variant: active.ID, Primer: "prime"})
	return NewRouter(store, active, chatSvc, config.CORSConfig{AllowedOrigins: []string{"https://host.example"}})
}

func TestRouterWithoutProviderAnswersWithErrorString(t *testing.T) {
	r := newTestRouter(t, "classic", ai.Unavailable{})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Error: "+ai.ErrNoProvider.Error(), body["response"])
	assert.Nil(t, body["session_id"])
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(t, "embed", ai.Unavailable{})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://host.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, "https://host.example", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterListsVariants(t *testing.T) {
	r := newTestRouter(t, "embed", ai.Unavailable{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/variants", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Active   string            `json:"active"`
		Variants []variant.Variant `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "embed", body.Active)
	assert.Len(t, body.Variants, len(variant.Seed()))

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/embed", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}
