package dto

import (
	"time"

	"github.com/locallibrary/catalog-server/internal/domain"
)

// Genre is a genre tag.
type Genre struct {
	ID   string `json:"id" doc:"Genre ID"`
	Name string `json:"name" doc:"Genre name"`
	Slug string `json:"slug" doc:"URL-safe slug"`
}

// GenreFrom maps a domain genre.
func GenreFrom(g *domain.Genre) Genre {
	return Genre{ID: g.ID, Name: g.Name, Slug: g.Slug}
}

// Author is an author record.
type Author struct {
	ID          string    `json:"id" doc:"Author ID"`
	FirstName   string    `json:"first_name" doc:"First name"`
	LastName    string    `json:"last_name" doc:"Family name"`
	Name        string    `json:"name" doc:"Display name, Last, First"`
	DateOfBirth string    `json:"date_of_birth,omitempty" doc:"Date of birth (YYYY-MM-DD)"`
	DateOfDeath string    `json:"date_of_death,omitempty" doc:"Date of death (YYYY-MM-DD)"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// AuthorFrom maps a domain author.
func AuthorFrom(a *domain.Author) Author {
	return Author{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Name:        a.Name(),
		DateOfBirth: domain.FormatDate(a.DateOfBirth),
		DateOfDeath: domain.FormatDate(a.DateOfDeath),
		UpdatedAt:   a.UpdatedAt,
	}
}

// Book is a catalog title.
type Book struct {
	ID        string    `json:"id" doc:"Book ID"`
	Title     string    `json:"title" doc:"Title"`
	AuthorID  string    `json:"author_id,omitempty" doc:"Author ID"`
	Summary   string    `json:"summary" doc:"Brief description"`
	ISBN      string    `json:"isbn" doc:"13 character ISBN"`
	GenreIDs  []string  `json:"genre_ids" doc:"Genre IDs"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// BookFrom maps a domain book.
func BookFrom(b *domain.Book) Book {
	genres := b.GenreIDs
	if genres == nil {
		genres = []string{}
	}
	return Book{
		ID:        b.ID,
		Title:     b.Title,
		AuthorID:  b.AuthorID,
		Summary:   b.Summary,
		ISBN:      b.ISBN,
		GenreIDs:  genres,
		UpdatedAt: b.UpdatedAt,
	}
}

// BookDetail is a book with its author, genres and copies.
type BookDetail struct {
	Book
	Author    *Author `json:"author,omitempty" doc:"Author, when set"`
	Genres    []Genre `json:"genres" doc:"Genres"`
	Instances []Copy  `json:"instances" doc:"Physical copies"`
}

// BookDetailFrom maps a resolved book.
func BookDetailFrom(d *domain.BookDetail) BookDetail {
	out := BookDetail{
		Book:      BookFrom(&d.Book),
		Genres:    Map(d.Genres, GenreFrom),
		Instances: Map(d.Instances, CopyFrom),
	}
	if d.Author != nil {
		a := AuthorFrom(d.Author)
		out.Author = &a
	}
	return out
}

// Copy is a physical copy of a book.
type Copy struct {
	ID          string `json:"id" doc:"Copy ID (UUID)"`
	BookID      string `json:"book_id" doc:"Book ID"`
	Imprint     string `json:"imprint" doc:"Publisher and date information"`
	Status      string `json:"status" doc:"Shelf status: available, on_loan, maintenance or reserved"`
	StatusLabel string `json:"status_label" doc:"Human-readable status"`
	DueBack     string `json:"due_back,omitempty" doc:"Due date (YYYY-MM-DD)"`
}

// CopyFrom maps a domain copy.
func CopyFrom(c *domain.BookInstance) Copy {
	return Copy{
		ID:          c.ID,
		BookID:      c.BookID,
		Imprint:     c.Imprint,
		Status:      string(c.Status),
		StatusLabel: c.Status.Label(),
		DueBack:     domain.FormatDate(c.DueBack),
	}
}

// Loan is a borrowed copy as shown in loan listings.
type Loan struct {
	Copy
	BookTitle  string `json:"book_title" doc:"Title of the borrowed book"`
	BorrowerID string `json:"borrower_id" doc:"Borrowing user"`
	Overdue    bool   `json:"overdue" doc:"Whether the due date has passed"`
}

// LoanFrom maps a loan row.
func LoanFrom(d *domain.BookInstanceDetail) Loan {
	return Loan{
		Copy:       CopyFrom(&d.BookInstance),
		BookTitle:  d.BookTitle,
		BorrowerID: d.BorrowerID,
		Overdue:    d.Overdue,
	}
}
