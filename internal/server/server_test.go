package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGenerateCodeEndpoint(t *testing.T) {
	handler := testServer().Handler()

	rec := postJSON(t, handler, "/generate-code", `{
		"blocks": [
			{"type": "loop", "params": {
				"iterations": 4,
				"body": [
					{"type": "move_forward", "params": {"distance": 1}},
					{"type": "turn_right", "params": {"degrees": 90}}
				]
			}}
		],
		"level": 4
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Level)
	assert.Equal(t, "for i in range(4):\n    move_forward(1)\n    turn_right(90)", resp.Code)
	assert.True(t, strings.HasPrefix(resp.Fingerprint, "blk:"))
}

func TestGenerateCodeRejectsEmptyBlocks(t *testing.T) {
	handler := testServer().Handler()

	for _, body := range []string{`{}`, `{"blocks": null}`, `{"blocks": []}`} {
		rec := postJSON(t, handler, "/generate-code", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
	}
}

func TestGenerateCodeStatusMapping(t *testing.T) {
	handler := testServer().Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid JSON body",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INPUT_DECODE_ERROR",
		},
		{
			name:       "block record without type",
			body:       `{"blocks": [{"params": {}}], "level": 1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INPUT_DECODE_ERROR",
		},
		{
			name:       "missing parameter",
			body:       `{"blocks": [{"type": "move_forward", "params": {}}], "level": 1}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "MISSING_PARAMETER",
		},
		{
			name:       "unknown command type",
			body:       `{"blocks": [{"type": "teleport", "params": {}}], "level": 1}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "UNKNOWN_COMMAND_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler, "/generate-code", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestLevelFilteringOverHTTP(t *testing.T) {
	handler := testServer().Handler()

	// the same loop payload at level 1 renders to empty text, not an error
	rec := postJSON(t, handler, "/generate-code", `{
		"blocks": [
			{"type": "loop", "params": {"iterations": 2, "body": [
				{"type": "jump", "params": {"height": 1}}
			]}}
		],
		"level": 1
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "", resp.Code)
}

func TestAvailableCommandsEndpoint(t *testing.T) {
	handler := testServer().Handler()

	rec := get(t, handler, "/available-commands?level=4")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp commandsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Level)
	assert.Len(t, resp.Commands, 10)

	// defaults to level 1
	rec = get(t, handler, "/available-commands")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Level)
	assert.Len(t, resp.Commands, 7)

	rec = get(t, handler, "/available-commands?level=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, testServer().Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, serviceName, resp["service"])
}

func TestTestLoopEndpoint(t *testing.T) {
	rec := get(t, testServer().Handler(), "/test-loop")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, resp["code"], "for i in range(4):")
}
