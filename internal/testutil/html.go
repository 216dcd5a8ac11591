package testutil

import (
	"fmt"
	"strings"
)

// Building describes one row of a generated building index.
type Building struct {
	Code    string
	Title   string
	Address string
	Link    string
}

// RoomRow describes one row of a generated building page.
type RoomRow struct {
	Number    string
	Seats     string
	Furniture string
	Type      string
	Href      string
}

// IndexHTML renders a building index document in the campus markup shape:
// a decorative table first, then the building table marked by the title
// cell class.
func IndexHTML(buildings []Building) string {
	var rows strings.Builder
	for _, b := range buildings {
		fmt.Fprintf(&rows, `<tr>
  <td class="views-field views-field-field-building-code"> %s </td>
  <td class="views-field views-field-title"><a href="%s">%s</a></td>
  <td class="views-field views-field-field-building-address"> %s </td>
  <td class="views-field views-field-nothing"><a href="%s">More info</a></td>
</tr>
`, b.Code, b.Link, b.Title, b.Address, b.Link)
	}
	return fmt.Sprintf(`<html><body>
<table><tbody><tr><td class="menu">navigation</td></tr></tbody></table>
<table><tbody>
%s</tbody></table>
</body></html>`, rows.String())
}

// BuildingHTML renders a per-building page with a room table marked by
// the room-number cell class.
func BuildingHTML(rooms []RoomRow) string {
	var rows strings.Builder
	for _, r := range rooms {
		fmt.Fprintf(&rows, `<tr>
  <td class="views-field views-field-field-room-number"><a href="%s">%s</a></td>
  <td class="views-field views-field-field-room-capacity"> %s </td>
  <td class="views-field views-field-field-room-furniture"> %s </td>
  <td class="views-field views-field-field-room-type"> %s </td>
  <td class="views-field views-field-nothing"><a href="%s">More info</a></td>
</tr>
`, r.Href, r.Number, r.Seats, r.Furniture, r.Type, r.Href)
	}
	return fmt.Sprintf(`<html><body>
<table><tbody>
%s</tbody></table>
</body></html>`, rows.String())
}
