package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog-server/internal/api/dto"
	"github.com/locallibrary/catalog-server/internal/search"
)

func createAuthor(t *testing.T, ts *testServer, token, first, last string) dto.Author {
	t.Helper()
	resp := ts.api.Post("/api/v1/authors", bearer(token), map[string]any{
		"first_name":    first,
		"last_name":     last,
		"date_of_birth": "1920-10-08",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[dto.Author](t, resp.Body.Bytes()).Data
}

func createGenre(t *testing.T, ts *testServer, token, name string) dto.Genre {
	t.Helper()
	resp := ts.api.Post("/api/v1/genres", bearer(token), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[dto.Genre](t, resp.Body.Bytes()).Data
}

func TestBookLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)
	_, librarian := ts.member(t, "librarian@example.com", true)

	author := createAuthor(t, ts, token, "Frank", "Herbert")
	genre := createGenre(t, ts, token, "Science Fiction")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title":     "Dune",
		"author_id": author.ID,
		"summary":   "Spice and sand.",
		"isbn":      "978-0-441-17271-9",
		"genre_ids": []string{genre.ID},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	book := decode[dto.Book](t, resp.Body.Bytes()).Data
	assert.Equal(t, "9780441172719", book.ISBN)
	assert.Equal(t, []string{genre.ID}, book.GenreIDs)

	resp = ts.api.Post("/api/v1/books/"+book.ID+"/instances", bearer(librarian), map[string]any{
		"imprint": "Ace, 1990",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	bi := decode[dto.Copy](t, resp.Body.Bytes()).Data
	assert.Equal(t, "available", bi.Status)
	assert.Equal(t, "Available", bi.StatusLabel)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	detail := decode[dto.BookDetail](t, resp.Body.Bytes()).Data
	require.NotNil(t, detail.Author)
	assert.Equal(t, "Herbert, Frank", detail.Author.Name)
	require.Len(t, detail.Genres, 1)
	assert.Equal(t, "Science Fiction", detail.Genres[0].Name)
	require.Len(t, detail.Instances, 1)
	assert.Equal(t, bi.ID, detail.Instances[0].ID)

	resp = ts.api.Patch("/api/v1/books/"+book.ID, bearer(token), map[string]any{
		"title":     "Dune (40th Anniversary)",
		"author_id": "",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[dto.Book](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Dune (40th Anniversary)", updated.Title)
	assert.Empty(t, updated.AuthorID)

	// A book with copies cannot be deleted.
	resp = ts.api.Delete("/api/v1/books/"+book.ID, bearer(token))
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[BookListResponse](t, resp.Body.Bytes()).Data
	require.Len(t, list.Books, 1)
	assert.Equal(t, 1, list.Total)
}

func TestBookErrors(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"title": "Dune", "summary": "x", "isbn": "9780441172719",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title": "Dune", "summary": "x", "isbn": "not-an-isbn",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "isbn")

	resp = ts.api.Get("/api/v1/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/books?cursor=bad!cursor")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateCopy_RequiresPermission(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)
	book := ts.book(t, "Dune")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/instances", bearer(token), map[string]any{
		"imprint": "Ace, 1990",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAuthorLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)

	author := createAuthor(t, ts, token, "Ursula", "Le Guin")
	assert.Equal(t, "Le Guin, Ursula", author.Name)
	assert.Equal(t, "1920-10-08", author.DateOfBirth)

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title": "The Dispossessed", "author_id": author.ID, "summary": "Anarres.", "isbn": "9780061054884",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	book := decode[dto.Book](t, resp.Body.Bytes()).Data

	resp = ts.api.Get("/api/v1/authors/" + author.ID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	detail := decode[AuthorDetailResponse](t, resp.Body.Bytes()).Data
	require.Len(t, detail.Books, 1)
	assert.Equal(t, book.ID, detail.Books[0].ID)

	// Death before birth is rejected.
	resp = ts.api.Patch("/api/v1/authors/"+author.ID, bearer(token), map[string]any{
		"date_of_death": "1900-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	resp = ts.api.Patch("/api/v1/authors/"+author.ID, bearer(token), map[string]any{
		"date_of_death": "2018-01-22",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "2018-01-22", decode[dto.Author](t, resp.Body.Bytes()).Data.DateOfDeath)

	resp = ts.api.Delete("/api/v1/authors/"+author.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The book outlives its author.
	resp = ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, decode[dto.BookDetail](t, resp.Body.Bytes()).Data.Author)

	resp = ts.api.Get("/api/v1/authors/" + author.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListAuthors_Order(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)
	createAuthor(t, ts, token, "Isaac", "Asimov")
	createAuthor(t, ts, token, "Zadie", "Smith")
	createAuthor(t, ts, token, "Adam", "Smith")

	resp := ts.api.Get("/api/v1/authors?limit=2")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[AuthorListResponse](t, resp.Body.Bytes()).Data
	require.Len(t, page.Authors, 2)
	assert.Equal(t, "Asimov, Isaac", page.Authors[0].Name)
	assert.Equal(t, "Smith, Adam", page.Authors[1].Name)
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, page.Total)

	resp = ts.api.Get("/api/v1/authors?limit=2&cursor=" + page.NextCursor)
	require.Equal(t, http.StatusOK, resp.Code)
	rest := decode[AuthorListResponse](t, resp.Body.Bytes()).Data
	require.Len(t, rest.Authors, 1)
	assert.Equal(t, "Smith, Zadie", rest.Authors[0].Name)
}

func TestGenres(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)

	fantasy := createGenre(t, ts, token, "Fantasy")
	assert.Equal(t, "fantasy", fantasy.Slug)

	resp := ts.api.Post("/api/v1/genres", bearer(token), map[string]any{"name": "  FANTASY "})
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/genres", map[string]any{"name": "Horror"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/genres")
	require.Equal(t, http.StatusOK, resp.Code)
	genres := decode[ListGenresResponse](t, resp.Body.Bytes()).Data.Genres
	require.Len(t, genres, 1)
	assert.Equal(t, fantasy.ID, genres[0].ID)
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.member(t, "reader@example.com", false)
	author := createAuthor(t, ts, token, "Frank", "Herbert")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title": "Dune", "author_id": author.ID, "summary": "Spice and sand.", "isbn": "9780441172719",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[search.SearchResult](t, resp.Body.Bytes()).Data
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Dune", result.Hits[0].Name)
	assert.Equal(t, search.DocTypeBook, result.Hits[0].Type)

	resp = ts.api.Get("/api/v1/search?q=herbert&types=author")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result = decode[search.SearchResult](t, resp.Body.Bytes()).Data
	require.NotEmpty(t, result.Hits)
	for _, hit := range result.Hits {
		assert.Equal(t, search.DocTypeAuthor, hit.Type)
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"book", "author"}, splitList(" book, ,author "))
}
