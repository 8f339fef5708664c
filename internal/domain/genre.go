package domain

// Genre is a tag attached to books (many-to-many).
type Genre struct {
	Syncable
	Name string `json:"name"`
	Slug string `json:"slug"`
}
