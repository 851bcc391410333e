package telegram

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuUpdate = `{
	"update_id": 10,
	"message": {
		"message_id": 1,
		"date": 1700000000,
		"from": {"id": 5, "is_bot": false, "first_name": "A"},
		"chat": {"id": 5, "type": "private"},
		"text": "/menu",
		"entities": [{"type": "bot_command", "offset": 0, "length": 5}]
	}
}`

func TestWebhook_DispatchesUpdate(t *testing.T) {
	h := &fakeHandler{}
	b, _ := newTestBot(h, Options{})

	req := httptest.NewRequest(http.MethodPost, webhookPath("123:abc"), strings.NewReader(menuUpdate))
	rr := httptest.NewRecorder()
	b.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, h.events, 1)
	assert.Equal(t, int64(5), h.events[0].Identity)
	assert.Equal(t, "menu", h.events[0].Command)
}

func TestWebhook_WrongTokenIsNotFound(t *testing.T) {
	h := &fakeHandler{}
	b, _ := newTestBot(h, Options{})

	req := httptest.NewRequest(http.MethodPost, webhookPath("999:zzz"), strings.NewReader(menuUpdate))
	rr := httptest.NewRecorder()
	b.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, h.events)
}

func TestWebhook_BadPayload(t *testing.T) {
	h := &fakeHandler{}
	b, _ := newTestBot(h, Options{})

	req := httptest.NewRequest(http.MethodPost, webhookPath("123:abc"), strings.NewReader("{"))
	rr := httptest.NewRecorder()
	b.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, h.events)
}

func TestHealth(t *testing.T) {
	b, _ := newTestBot(&fakeHandler{}, Options{})

	rr := httptest.NewRecorder()
	b.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
