package product

import (
	"regexp"
	"strings"
)

// Availability is the closed set of stock states a listing can be in.
type Availability string

const (
	InStock    Availability = "in_stock"
	OutOfStock Availability = "out_of_stock"
	Backorder  Availability = "backorder"
	Unknown    Availability = "unknown"
)

// Record is one normalized product listing, ready for persistence.
// A record with an empty Title or a non-positive Price is never persisted.
type Record struct {
	Title        string       `json:"title" bson:"title"`
	Price        float64      `json:"price" bson:"price"`
	Reference    string       `json:"reference,omitempty" bson:"reference,omitempty"`
	Description  string       `json:"description,omitempty" bson:"description,omitempty"`
	Availability Availability `json:"availability,omitempty" bson:"availability,omitempty"`
	Image        string       `json:"image,omitempty" bson:"image,omitempty"`
	ProductURL   string       `json:"product_url,omitempty" bson:"product_url,omitempty"`
	Category     string       `json:"category" bson:"category"`
	Supplier     string       `json:"supplier" bson:"supplier"`
}

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeReference strips everything but letters and digits so supplier
// references ("Réf: LN-123/A", "[LN123A]") compare equal across sites.
// Idempotent by construction.
func NormalizeReference(ref string) string {
	return nonAlphanumeric.ReplaceAllString(strings.TrimSpace(ref), "")
}

// Valid reports whether the record satisfies the persistence invariants.
func (r *Record) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && r.Price > 0
}
