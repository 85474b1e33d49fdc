package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pickleball/internal/config"
	"pickleball/internal/db/dbtest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(dbtest.Open(t), config.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var body []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return body
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

type testUser struct {
	ID    string
	Token string
}

func registerUser(t *testing.T, ts *httptest.Server, name string) testUser {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    name + "@example.com",
		"password": "secret123",
	})
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	user, _ := body["user"].(map[string]any)
	id, _ := user["id"].(string)
	token, _ := body["token"].(string)
	if id == "" || token == "" {
		t.Fatalf("register response missing id or token: %v", body)
	}
	return testUser{ID: id, Token: token}
}

func createGame(t *testing.T, ts *httptest.Server, host testUser, maxPlayers int) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games", host.Token, map[string]any{
		"location":    "Riverside Courts",
		"date":        "2099-06-01",
		"start_time":  "18:00",
		"end_time":    "20:00",
		"max_players": maxPlayers,
	})
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create game response missing id: %v", body)
	}
	return id
}

func joinGame(t *testing.T, ts *httptest.Server, player testUser, gameID string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+gameID+"/join", player.Token, nil)
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	id, _ := body["id"].(string)
	return id
}
