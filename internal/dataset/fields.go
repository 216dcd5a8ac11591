package dataset

import (
	"fmt"
	"strings"
)

// Field category tables per kind. The validator uses these to decide which
// comparator may touch which field.
var (
	sectionNumericFields = map[string]bool{
		"avg": true, "pass": true, "fail": true, "audit": true, "year": true,
	}
	sectionStringFields = map[string]bool{
		"dept": true, "id": true, "instructor": true, "title": true, "uuid": true,
	}
	roomNumericFields = map[string]bool{
		"lat": true, "lon": true, "seats": true,
	}
	roomStringFields = map[string]bool{
		"fullname": true, "shortname": true, "number": true, "name": true,
		"address": true, "type": true, "furniture": true, "href": true,
	}
)

// IsNumericField reports whether field is a numeric field of kind.
func IsNumericField(kind Kind, field string) bool {
	switch kind {
	case KindSections:
		return sectionNumericFields[field]
	case KindRooms:
		return roomNumericFields[field]
	default:
		return false
	}
}

// IsStringField reports whether field is a string field of kind.
func IsStringField(kind Kind, field string) bool {
	switch kind {
	case KindSections:
		return sectionStringFields[field]
	case KindRooms:
		return roomStringFields[field]
	default:
		return false
	}
}

// IsField reports whether field exists at all on kind.
func IsField(kind Kind, field string) bool {
	return IsNumericField(kind, field) || IsStringField(kind, field)
}

// Key is a fully qualified field reference as written in a query:
// "<datasetid>_<field>".
type Key struct {
	Dataset string
	Field   string
}

// String renders the key back into query form.
func (k Key) String() string {
	return k.Dataset + IDSeparator + k.Field
}

// ParseKey splits a query key on the first separator. The field part may
// itself never contain a separator, so a second one is an error.
func ParseKey(raw string) (Key, error) {
	parts := strings.SplitN(raw, IDSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Key{}, NewRequestError(fmt.Sprintf("key %q is not of the form <dataset>_<field>", raw))
	}
	if strings.Contains(parts[1], IDSeparator) {
		return Key{}, NewRequestError(fmt.Sprintf("key %q contains more than one %q", raw, IDSeparator))
	}
	return Key{Dataset: parts[0], Field: parts[1]}, nil
}
