package series

import (
	"bookshelf/internal/book"
	"bookshelf/internal/textmatch"
)

// MissingFrom returns the catalog entries not represented in owned, in
// catalog order. An entry counts as owned when any owned title matches it
// under textmatch.TitleOwned.
func MissingFrom(owned []book.Book, catalog []Entry) []Entry {
	missing := []Entry{}
	for _, entry := range catalog {
		if !isOwned(owned, entry) {
			missing = append(missing, entry)
		}
	}
	return missing
}

func isOwned(owned []book.Book, entry Entry) bool {
	for _, b := range owned {
		if textmatch.TitleOwned(b.Title, entry.Title) {
			return true
		}
	}
	return false
}
