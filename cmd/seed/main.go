// Package main seeds a catalog database with demo authors, books, copies and loans.
//
// Usage:
//
//	DB_PATH=~/catalog/catalog.db go run ./cmd/seed
//	DB_PATH=~/catalog/catalog.db go run ./cmd/seed --create-users  # Also create test members
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/locallibrary/catalog-server/internal/auth"
	"github.com/locallibrary/catalog-server/internal/domain"
	"github.com/locallibrary/catalog-server/internal/id"
	"github.com/locallibrary/catalog-server/internal/store"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

var createUsers = flag.Bool("create-users", false, "Create test members to borrow books")

type seedBook struct {
	title, isbn, summary string
}

type seedAuthor struct {
	first, last, born string
	books             []seedBook
}

var catalog = []seedAuthor{
	{"Ursula", "Le Guin", "1929-10-21", []seedBook{
		{"A Wizard of Earthsea", "9780547773742", "A young mage unleashes a shadow."},
		{"The Dispossessed", "9780061054884", "A physicist between two worlds."},
	}},
	{"Frank", "Herbert", "1920-10-08", []seedBook{
		{"Dune", "9780441172719", "Spice and sand."},
	}},
	{"Octavia", "Butler", "1947-06-22", []seedBook{
		{"Kindred", "9780807083697", "A writer pulled back through time."},
		{"Parable of the Sower", "9781538732182", "A drought-stricken California."},
	}},
}

var testUserNames = [][2]string{
	{"Alex", "Rivera"},
	{"Jordan", "Chen"},
	{"Sam", "Taylor"},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/catalog/catalog.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	if *createUsers {
		createTestUsers(ctx, s, now)
	}

	var copies []*domain.BookInstance
	for _, a := range catalog {
		author := &domain.Author{
			Syncable:  domain.Syncable{ID: id.MustGenerate("author"), CreatedAt: now, UpdatedAt: now},
			FirstName: a.first,
			LastName:  a.last,
		}
		if born, err := domain.ParseDate(a.born); err == nil {
			author.DateOfBirth = &born
		}
		if err := s.CreateAuthor(ctx, author); err != nil {
			log.Printf("Failed to create author %s: %v", author.Name(), err)
			continue
		}

		for _, b := range a.books {
			book := &domain.Book{
				Syncable: domain.Syncable{ID: id.MustGenerate("book"), CreatedAt: now, UpdatedAt: now},
				Title:    b.title,
				AuthorID: author.ID,
				Summary:  b.summary,
				ISBN:     b.isbn,
			}
			if err := s.CreateBook(ctx, book); err != nil {
				log.Printf("Failed to create book %s: %v", b.title, err)
				continue
			}

			for n := range 2 {
				bi := &domain.BookInstance{
					Syncable: domain.Syncable{ID: id.NewInstanceID(), CreatedAt: now, UpdatedAt: now},
					BookID:   book.ID,
					Imprint:  fmt.Sprintf("Seed Press, printing %d", n+1),
					Status:   domain.LoanStatusAvailable,
				}
				if err := s.CreateInstance(ctx, bi); err != nil {
					log.Printf("Failed to create copy of %s: %v", b.title, err)
					continue
				}
				copies = append(copies, bi)
			}
			fmt.Printf("  Created %q by %s\n", b.title, author.Name())
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	var borrowers []*domain.User
	for _, u := range users {
		if !u.IsRoot {
			borrowers = append(borrowers, u)
		}
	}
	if len(borrowers) == 0 {
		fmt.Println("\nNo members to lend to; run with --create-users to add some.")
		fmt.Println("\nSeeding complete!")
		return
	}

	// Lend half the copies with due dates from a week overdue to three weeks out.
	loans := 0
	for i, bi := range copies {
		if i%2 == 1 {
			continue
		}
		borrower := borrowers[rand.IntN(len(borrowers))]
		due := domain.DateOf(now).AddDate(0, 0, rand.IntN(28)-7)
		if err := s.Checkout(ctx, bi.ID, borrower.ID, due, now); err != nil {
			log.Printf("Failed to lend copy %s: %v", bi.ID, err)
			continue
		}
		loans++
	}
	fmt.Printf("\nLent %d copies to %d members\n", loans, len(borrowers))
	fmt.Println("\nSeeding complete!")
}

// createTestUsers creates members with password "testpass123".
func createTestUsers(ctx context.Context, s *sqlite.Store, now time.Time) {
	fmt.Println("\n=== Creating Test Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return
	}

	for i, name := range testUserNames {
		email := fmt.Sprintf("test%d@example.com", i+1)

		if _, err := s.GetUserByEmail(ctx, email); err == nil {
			fmt.Printf("  User %s already exists, skipping\n", email)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("  Failed to look up %s: %v", email, err)
			continue
		}

		user := &domain.User{
			Syncable:     domain.Syncable{ID: id.MustGenerate("user"), CreatedAt: now, UpdatedAt: now},
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    name[0],
			LastName:     name[1],
		}
		// The first test user staffs the desk.
		user.Permissions.CanMarkReturned = i == 0

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("  Failed to create user %s: %v", email, err)
			continue
		}
		fmt.Printf("  Created user: %s %s (%s)\n", name[0], name[1], email)
	}
}
