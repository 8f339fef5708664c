package genre

// DefaultGenres is the starter genre list loaded by the seed command.
var DefaultGenres = []string{
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Thriller",
	"Romance",
	"Horror",
	"Historical Fiction",
	"Literary Fiction",
	"Young Adult",
	"Poetry",
	"Biography",
	"History",
	"Science",
	"Philosophy",
	"Nonfiction",
}
