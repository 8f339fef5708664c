package domain

// Book is a catalog title. Physical copies are BookInstances.
type Book struct {
	Syncable
	Title    string   `json:"title"`
	AuthorID string   `json:"author_id,omitempty"`
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn"`
	GenreIDs []string `json:"genre_ids"`
}

// BookDetail is a book with its author, genres and copies resolved.
type BookDetail struct {
	Book
	Author    *Author         `json:"author,omitempty"`
	Genres    []*Genre        `json:"genres"`
	Instances []*BookInstance `json:"instances"`
}
