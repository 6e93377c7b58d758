// Package book provides narrative locations and the section registry that
// battles are attached to.
package book

import "fmt"

// Location identifies a section within a book.
// The zero value is None, the "undefined location" sentinel.
type Location struct {
	// Book is the book identifier, e.g. "sickle_sun".
	Book string `yaml:"book" json:"book"`
	// Section is the 1-based section number within Book.
	Section int `yaml:"section" json:"section"`
}

// None is the undefined location.
var None = Location{}

// At builds a Location.
func At(bookID string, section int) Location {
	return Location{Book: bookID, Section: section}
}

// IsDefined reports whether l names a real section.
//
// Postcondition: Returns true iff Book is non-empty and Section >= 1.
func (l Location) IsDefined() bool {
	return l.Book != "" && l.Section > 0
}

// Equal reports whether l and other name the same section.
// Any two undefined locations are equal.
func (l Location) Equal(other Location) bool {
	if !l.IsDefined() || !other.IsDefined() {
		return !l.IsDefined() && !other.IsDefined()
	}
	return l.Book == other.Book && l.Section == other.Section
}

// String returns "book:section", or "none" for an undefined location.
func (l Location) String() string {
	if !l.IsDefined() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", l.Book, l.Section)
}
