package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog-server/internal/auth"
	"github.com/locallibrary/catalog-server/internal/config"
	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/logger"
	"github.com/locallibrary/catalog-server/internal/search"
	"github.com/locallibrary/catalog-server/internal/service"
	"github.com/locallibrary/catalog-server/internal/store/kv"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// testEnvelope mirrors the success envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors the coded error envelope.
type testErrorEnvelope struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

const testPassword = "correct-horse"

type testServer struct {
	api      humatest.TestAPI
	server   *Server
	store    *sqlite.Store
	services *Services
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Name: "Catalog Test"},
		Auth: config.AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			LoginRateLimit:       1000,
			LoginBurst:           1000,
		},
		Loans: config.LoansConfig{EnforceRenewalWindow: true},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithConfig(t, testConfig())
}

func setupTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "catalog.db"), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	kvs, err := kv.OpenInMemory(log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvs.Close() })

	idx, err := search.NewSearchIndex(search.Options{Path: filepath.Join(dir, "search.bleve")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
	require.NoError(t, err)

	sessions := service.NewSessionService(kv.NewSessions(kvs), tokens, log.Logger)
	searchSvc := service.NewSearchService(idx, st, log.Logger)
	services := &Services{
		Auth:    service.NewAuthService(st, tokens, sessions, log.Logger),
		User:    service.NewUserService(st, log.Logger),
		Loan:    service.NewLoanService(st, cfg.Loans.EnforceRenewalWindow, log.Logger),
		Book:    service.NewBookService(st, searchSvc, log.Logger),
		Author:  service.NewAuthorService(st, searchSvc, log.Logger),
		Genre:   service.NewGenreService(st, log.Logger),
		Copy:    service.NewCopyService(st, log.Logger),
		Search:  searchSvc,
		Summary: service.NewSummaryService(st, kv.NewVisits(kvs), log.Logger),
	}

	srv := NewServer(st, services, cfg, log)
	t.Cleanup(srv.Close)

	return &testServer{
		api:      humatest.Wrap(t, srv.api),
		server:   srv,
		store:    st,
		services: services,
	}
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()
	var env testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	assert.False(t, env.Success)
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env
}

// setupRoot creates the root account and returns its access token.
func (ts *testServer) setupRoot(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":      "root@example.com",
		"password":   testPassword,
		"first_name": "Root",
		"last_name":  "Admin",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[struct {
		AccessToken string `json:"access_token"`
	}](t, resp.Body.Bytes()).Data.AccessToken
}

// member creates a user directly in the store and logs them in.
func (ts *testServer) member(t *testing.T, email string, canMarkReturned bool) (*domain.User, string) {
	t.Helper()
	u, err := ts.services.User.CreateUser(context.Background(), &domain.User{IsRoot: true}, service.CreateUserRequest{
		Email:           email,
		Password:        testPassword,
		FirstName:       "Library",
		LastName:        "Member",
		CanMarkReturned: canMarkReturned,
	})
	require.NoError(t, err)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	token := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, resp.Body.Bytes()).Data.AccessToken
	return u, token
}

func (ts *testServer) book(t *testing.T, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{Title: title, Summary: "summary", ISBN: "9780000000000"}
	b.ID = id.MustGenerate("book")
	b.InitTimestamps()
	require.NoError(t, ts.store.CreateBook(context.Background(), b))
	return b
}

// loan adds a copy of bookID lent to borrowerID, due days from today.
func (ts *testServer) loan(t *testing.T, bookID, borrowerID string, days int) *domain.BookInstance {
	t.Helper()
	due := domain.DateOf(time.Now()).AddDate(0, 0, days)
	bi := &domain.BookInstance{
		BookID:     bookID,
		Imprint:    "Penguin, 1999",
		Status:     domain.LoanStatusOnLoan,
		BorrowerID: borrowerID,
		DueBack:    &due,
	}
	bi.ID = id.NewInstanceID()
	bi.InitTimestamps()
	require.NoError(t, ts.store.CreateInstance(context.Background(), bi))
	return bi
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCORSExposesLocation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health", "Origin: https://library.example.com")
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header().Get("Access-Control-Expose-Headers"), "Location")
}
