package dataset

import (
	"fmt"
	"strings"
)

// Kind identifies the record schema of a dataset.
type Kind string

const (
	// KindSections datasets hold course section records parsed from the
	// courses/ directory of a submitted archive.
	KindSections Kind = "sections"

	// KindRooms datasets hold campus room records scraped from the
	// archive's building index.
	KindRooms Kind = "rooms"
)

// ParseKind converts a raw kind token into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSections:
		return KindSections, nil
	case KindRooms:
		return KindRooms, nil
	default:
		return "", NewRequestError(fmt.Sprintf("invalid dataset kind %q", s))
	}
}

// IDSeparator is reserved for query keys (<id>_<field>) and therefore
// forbidden inside dataset ids.
const IDSeparator = "_"

// ValidateID rejects ids that are empty, whitespace-only, or contain the
// reserved separator. Uniqueness is the catalog's job, not ours.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return NewRequestError("dataset id must not be empty or whitespace")
	}
	if strings.Contains(id, IDSeparator) {
		return NewRequestError(fmt.Sprintf("dataset id %q must not contain %q", id, IDSeparator))
	}
	return nil
}
