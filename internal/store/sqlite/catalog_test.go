package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/store"
)

func seedGenre(t *testing.T, s *Store, name, slug string) *domain.Genre {
	t.Helper()
	g := &domain.Genre{Name: name, Slug: slug}
	stamp(&g.Syncable, "gen")
	require.NoError(t, s.CreateGenre(context.Background(), g))
	return g
}

func TestAuthor_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	born, _ := domain.ParseDate("1929-10-21")
	a := &domain.Author{FirstName: "Ursula", LastName: "Le Guin", DateOfBirth: &born}
	stamp(&a.Syncable, "aut")
	require.NoError(t, s.CreateAuthor(ctx, a))

	got, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Le Guin", got.LastName)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, born, *got.DateOfBirth)
	assert.Nil(t, got.DateOfDeath)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	died, _ := domain.ParseDate("2018-01-22")
	got.DateOfDeath = &died
	require.NoError(t, s.UpdateAuthor(ctx, got))

	again, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, again.DateOfDeath)
	assert.Equal(t, died, *again.DateOfDeath)

	require.NoError(t, s.DeleteAuthor(ctx, a.ID))
	_, err = s.GetAuthor(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAuthor(ctx, a.ID), store.ErrNotFound)
}

func TestListAuthors_OrderAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedAuthor(t, s, "Iain", "Banks")
	seedAuthor(t, s, "Octavia", "Butler")
	seedAuthor(t, s, "Ann", "Leckie")

	page, err := s.ListAuthors(ctx, store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "Banks", page.Items[0].LastName)
	assert.Equal(t, "Butler", page.Items[1].LastName)

	next, err := s.ListAuthors(ctx, store.PaginationParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Equal(t, "Leckie", next.Items[0].LastName)
	assert.False(t, next.HasMore)
}

func TestListAuthors_BadCursor(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListAuthors(context.Background(), store.PaginationParams{Cursor: "%%%"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestBook_GenresRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := seedAuthor(t, s, "Frank", "Herbert")
	sf := seedGenre(t, s, "Science Fiction", "science-fiction")
	adv := seedGenre(t, s, "Adventure", "adventure")

	b := seedBook(t, s, "Dune", a.ID, sf.ID, adv.ID, sf.ID)

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.AuthorID)
	assert.ElementsMatch(t, []string{sf.ID, adv.ID}, got.GenreIDs)

	genres, err := s.GetBookGenres(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Adventure", genres[0].Name)

	got.GenreIDs = []string{adv.ID}
	got.Title = "Dune Messiah"
	require.NoError(t, s.UpdateBook(ctx, got))

	again, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", again.Title)
	assert.Equal(t, []string{adv.ID}, again.GenreIDs)
}

func TestBook_UnknownReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &domain.Book{Title: "Orphan", AuthorID: "aut-missing"}
	stamp(&b.Syncable, "bk")
	assert.ErrorIs(t, s.CreateBook(ctx, b), store.ErrInvalidInput)

	b2 := &domain.Book{Title: "Orphan", GenreIDs: []string{"gen-missing"}}
	stamp(&b2.Syncable, "bk")
	assert.ErrorIs(t, s.CreateBook(ctx, b2), store.ErrInvalidInput)

	// The failed transaction left nothing behind.
	_, err := s.GetBook(ctx, b2.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteAuthor_BooksKeepExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := seedAuthor(t, s, "Anon", "Ymous")
	b := seedBook(t, s, "Beowulf", a.ID)

	require.NoError(t, s.DeleteAuthor(ctx, a.ID))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AuthorID)
}

func TestDeleteBook_WithCopiesRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBook(t, s, "Dune", "")
	seedCopy(t, s, b.ID, domain.LoanStatusAvailable, "", "")

	assert.ErrorIs(t, s.DeleteBook(ctx, b.ID), store.ErrInUse)

	lonely := seedBook(t, s, "Lonely", "")
	require.NoError(t, s.DeleteBook(ctx, lonely.ID))
	assert.ErrorIs(t, s.DeleteBook(ctx, lonely.ID), store.ErrNotFound)
}

func TestListBooksByAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := seedAuthor(t, s, "Ursula", "Le Guin")
	other := seedAuthor(t, s, "Frank", "Herbert")
	seedBook(t, s, "The Lathe of Heaven", a.ID)
	seedBook(t, s, "A Wizard of Earthsea", a.ID)
	seedBook(t, s, "Dune", other.ID)

	page, err := s.ListBooksByAuthor(ctx, a.ID, store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A Wizard of Earthsea", page.Items[0].Title)
	assert.Equal(t, 2, page.Total)

	all, err := s.AllBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedGenre(t, s, "Poetry", "poetry")
	fantasy := seedGenre(t, s, "Fantasy", "fantasy")

	dup := &domain.Genre{Name: "FANTASY", Slug: "fantasy"}
	stamp(&dup.Syncable, "gen")
	assert.ErrorIs(t, s.CreateGenre(ctx, dup), store.ErrAlreadyExists)

	list, err := s.ListGenres(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Fantasy", list[0].Name)

	got, err := s.GetGenreBySlug(ctx, "fantasy")
	require.NoError(t, err)
	assert.Equal(t, fantasy.ID, got.ID)

	byID, err := s.GetGenresByIDs(ctx, []string{fantasy.ID, "gen-missing"})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	has, err := s.HasRootUser(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	u := seedUser(t, s, "Librarian@Example.com")

	got, err := s.GetUserByEmail(ctx, "  librarian@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Librarian@Example.com", got.Email)
	assert.False(t, got.Permissions.CanMarkReturned)
	assert.Nil(t, got.LastLoginAt)

	dup := &domain.User{Email: "LIBRARIAN@example.com", PasswordHash: "x"}
	stamp(&dup.Syncable, "usr")
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrAlreadyExists)

	require.NoError(t, s.SetPermissions(ctx, u.ID, domain.UserPermissions{CanMarkReturned: true}, u.UpdatedAt))
	require.NoError(t, s.RecordLogin(ctx, u.ID, u.UpdatedAt))

	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Permissions.CanMarkReturned)
	assert.NotNil(t, got.LastLoginAt)

	assert.ErrorIs(t, s.SetPermissions(ctx, "usr-missing", domain.UserPermissions{}, u.UpdatedAt), store.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
