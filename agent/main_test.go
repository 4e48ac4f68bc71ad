package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/imkonsowa/grocery-rag/completion"
	"github.com/imkonsowa/grocery-rag/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestAgent(t *testing.T, llm *mockLLM, products string) *Agent {
	t.Helper()

	return &Agent{
		config:   &config.Config{},
		handler:  newTestHandler(t, llm, writeCatalog(t, testCategories, products)),
		upgrader: websocket.Upgrader{},
	}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestChatEndpoint(t *testing.T) {
	llm := &mockLLM{extraction: "[{'products': ['Milk']}]", answer: "Milk costs $1.99."}
	router := newTestAgent(t, llm, testProducts).Router()

	rec := doRequest(t, router, http.MethodPost, "/chat", `{"message": "price of milk?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "Milk costs $1.99.", reply.Reply)
	assert.Contains(t, reply.Dossier, `"price": 1.99`)
	require.Len(t, reply.Entities, 1)
	assert.Equal(t, []string{"Milk"}, reply.Entities[0].Products)
}

func TestChatEndpoint_Errors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		router := newTestAgent(t, &mockLLM{}, testProducts).Router()
		rec := doRequest(t, router, http.MethodPost, "/chat", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty message", func(t *testing.T) {
		router := newTestAgent(t, &mockLLM{}, testProducts).Router()
		rec := doRequest(t, router, http.MethodPost, "/chat", `{"message": "   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "message is required")
	})

	t.Run("completion failure", func(t *testing.T) {
		llm := &mockLLM{extraction: "[]", answerErr: &completion.Error{Model: "m", Err: errors.New("unavailable")}}
		router := newTestAgent(t, llm, testProducts).Router()
		rec := doRequest(t, router, http.MethodPost, "/chat", `{"message": "hi"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		router := newTestAgent(t, &mockLLM{}, `not a catalog`).Router()
		rec := doRequest(t, router, http.MethodPost, "/chat", `{"message": "hi"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestAgent(t, &mockLLM{}, testProducts).Router()

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCatalogEndpoints(t *testing.T) {
	router := newTestAgent(t, &mockLLM{}, testProducts).Router()

	rec := doRequest(t, router, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, testCategories, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/products?category=beverages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var beverages []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &beverages))
	require.Len(t, beverages, 2)
	assert.Equal(t, "Cola", beverages[0]["name"])

	rec = doRequest(t, router, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 4)

	rec = doRequest(t, router, http.MethodGet, "/products?category=frozen", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/products/Milk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name": "Milk", "category": "dairy", "price": 1.99}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/products/GhostItem", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatWebSocket(t *testing.T) {
	llm := &mockLLM{extraction: "[{'category': 'produce'}]", answer: "Bananas are 25 cents."}
	server := httptest.NewServer(newTestAgent(t, llm, testProducts).Router())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/chat/ws?message=any+fruit%3F"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var frames []WebSocketsMessage
	for {
		var msg WebSocketsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		frames = append(frames, msg)
	}

	require.Len(t, frames, 3)
	assert.Equal(t, MessageTypeEntities, frames[0].Type)
	assert.Equal(t, MessageTypeProducts, frames[1].Type)
	assert.Contains(t, frames[1].Data, `"name": "Banana"`)
	assert.Equal(t, WebSocketsMessage{Type: MessageTypeChat, Data: "Bananas are 25 cents."}, frames[2])

	prompts := llm.calls()
	require.Len(t, prompts, 2)
	assert.Equal(t, "####any fruit?####", prompts[0][1].Content)
}

func TestChatWebSocket_RejectsEmptyMessage(t *testing.T) {
	router := newTestAgent(t, &mockLLM{}, testProducts).Router()

	rec := doRequest(t, router, http.MethodGet, "/chat/ws", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, errorStatus(&completion.Error{Model: "m", Err: errors.New("x")}))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(errors.New("disk")))
}
