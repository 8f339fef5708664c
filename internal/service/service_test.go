package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog-server/internal/auth"
	"github.com/locallibrary/catalog-server/internal/domain"
	domainerrors "github.com/locallibrary/catalog-server/internal/errors"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/search"
	"github.com/locallibrary/catalog-server/internal/store/kv"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// testToday is the pinned "today" for clock-dependent tests.
var testToday = time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

type testEnv struct {
	store  *sqlite.Store
	kv     *kv.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	kvs, err := kv.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvs.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	return &testEnv{
		store:  st,
		kv:     kvs,
		tokens: tokens,
		logger: slog.New(slog.DiscardHandler),
	}
}

func (e *testEnv) searchService(t *testing.T) *SearchService {
	t.Helper()
	idx, err := search.NewSearchIndex(search.Options{Path: filepath.Join(t.TempDir(), "search.bleve")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return NewSearchService(idx, e.store, e.logger)
}

func (e *testEnv) user(t *testing.T, email string, canMarkReturned bool) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", FirstName: "Test", LastName: "User"}
	u.ID = id.MustGenerate("user")
	u.InitTimestamps()
	u.Permissions.CanMarkReturned = canMarkReturned
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) book(t *testing.T, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{Title: title, Summary: "summary", ISBN: "9780000000000"}
	b.ID = id.MustGenerate("book")
	b.InitTimestamps()
	require.NoError(t, e.store.CreateBook(context.Background(), b))
	return b
}

// loan adds a copy of bookID on loan to borrowerID, due on due (YYYY-MM-DD).
func (e *testEnv) loan(t *testing.T, bookID, borrowerID, due string) *domain.BookInstance {
	t.Helper()
	d, err := domain.ParseDate(due)
	require.NoError(t, err)
	bi := &domain.BookInstance{
		BookID:     bookID,
		Imprint:    "Penguin, 1999",
		Status:     domain.LoanStatusOnLoan,
		BorrowerID: borrowerID,
		DueBack:    &d,
	}
	bi.ID = id.NewInstanceID()
	bi.InitTimestamps()
	require.NoError(t, e.store.CreateInstance(context.Background(), bi))
	return bi
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// fieldErrors returns the per-field details of a validation error.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domainerrors.Error
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	require.Equal(t, domainerrors.CodeValidation, de.Code)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok, "expected field details, got %#v", de.Details)
	return details
}

func TestStoreError(t *testing.T) {
	assert.Nil(t, storeError(nil, "book"))

	other := errors.New("disk on fire")
	assert.Equal(t, other, storeError(other, "book"))
}

func TestRequirePermission(t *testing.T) {
	assert.ErrorIs(t, requirePermission(nil, domain.PermCanMarkReturned), domainerrors.ErrUnauthorized)

	member := &domain.User{}
	assert.ErrorIs(t, requirePermission(member, domain.PermCanMarkReturned), domainerrors.ErrForbidden)

	librarian := &domain.User{Permissions: domain.UserPermissions{CanMarkReturned: true}}
	assert.NoError(t, requirePermission(librarian, domain.PermCanMarkReturned))

	root := &domain.User{IsRoot: true}
	assert.NoError(t, requirePermission(root, domain.PermCanMarkReturned))
	assert.NoError(t, requireAdmin(root))
	assert.ErrorIs(t, requireAdmin(librarian), domainerrors.ErrForbidden)
}
