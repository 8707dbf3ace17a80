package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/revisit-app/decks-service/internal/collaborator"
	"github.com/revisit-app/decks-service/internal/handler"
	"github.com/revisit-app/decks-service/internal/repository/sqlite"
	"github.com/revisit-app/decks-service/internal/service"
)

const (
	authorID = "42"
	readerID = "7"
)

// testEnv runs the router against a temp SQLite database and fake user
// directory and profile services.
type testEnv struct {
	srv       *httptest.Server
	directory *httptest.Server
	profile   *httptest.Server

	// profileStatus is the status the fake profile service answers with.
	profileStatus atomic.Int32
}

func newTestEnv(t *testing.T, opts handler.RouterOptions) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{}
	env.profileStatus.Store(http.StatusOK)

	env.directory = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/"), 10, 64)
		if err != nil || (id != 42 && id != 7) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": id, "username": "user" + strconv.FormatInt(id, 10), "firstName": "Grace", "lastName": "Hopper",
		})
	}))
	t.Cleanup(env.directory.Close)

	env.profile = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(env.profileStatus.Load()))
	}))
	t.Cleanup(env.profile.Close)

	httpClient := &http.Client{Timeout: 2 * time.Second}
	directory := collaborator.NewDirectoryClient(httpClient, env.directory.URL, nil)
	profiles := collaborator.NewProfileClient(httpClient, env.profile.URL, nil)

	decks := service.NewDeckService(db.Decks(), db.SavedDecks(), directory, profiles, 2*time.Second)
	saves := service.NewSaveService(db.Decks(), db.SavedDecks())

	env.srv = httptest.NewServer(handler.NewRouter(decks, saves, opts))
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, headers map[string]string, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func (e *testEnv) createDeck(t *testing.T) handler.DeckDTO {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/", map[string]string{"userId": authorID}, `{"title":"Kanji N5","desc":"Beginner kanji"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create deck: expected 201, got %d: %s", resp.StatusCode, body)
	}
	return decodeDeck(t, body)
}

func decodeDeck(t *testing.T, body []byte) handler.DeckDTO {
	t.Helper()
	var deck handler.DeckDTO
	if err := json.Unmarshal(body, &deck); err != nil {
		t.Fatalf("decode deck: %v (%s)", err, body)
	}
	return deck
}

func expectStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, body)
	}
}
