package resolver

import "fmt"

// Resolution is the canonical (name, number, id) triple for one input.
//
// The zero value means "not found". The sentinels are distinct from every
// valid value: resolved names and ids are never empty strings, and
// catalogue numbers are never below 1. Unnumbered bodies resolve with
// Number zero and a valid name.
type Resolution struct {
	Name   string `json:"name,omitempty"`
	Number int64  `json:"number,omitempty"`
	ID     string `json:"id,omitempty"`
}

// Resolved reports whether any field of the triple was filled in.
func (r Resolution) Resolved() bool {
	return r.Name != "" || r.Number > 0 || r.ID != ""
}

// String renders the conventional "(number) name" form. Bodies without a
// number render as the bare name.
func (r Resolution) String() string {
	if !r.Resolved() {
		return "not found"
	}
	if r.Number < 1 {
		return r.Name
	}
	return fmt.Sprintf("(%d) %s", r.Number, r.Name)
}
