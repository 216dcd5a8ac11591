package dataset

// Record is one section or one room entry. Field returns the value of a
// bare field name ("avg", "shortname", ...) as either a float64 or a
// string; ok is false for fields the record's kind does not define.
//
// This is a sealed interface - only Section and Room implement it.
type Record interface {
	Field(name string) (any, bool)
	record() // marker method, seals the interface to this package
}

// Section is a single offering of a course in a particular term.
//
// JSON tags match the bare query field names so that persisted datasets and
// query result rows share one representation.
type Section struct {
	Avg        float64 `json:"avg"`
	Pass       float64 `json:"pass"`
	Fail       float64 `json:"fail"`
	Audit      float64 `json:"audit"`
	Year       float64 `json:"year"`
	Dept       string  `json:"dept"`
	ID         string  `json:"id"` // course number, e.g. "310"
	Instructor string  `json:"instructor"`
	Title      string  `json:"title"`
	UUID       string  `json:"uuid"` // unique section identifier
}

func (Section) record() {}

// Field implements Record.
func (s Section) Field(name string) (any, bool) {
	switch name {
	case "avg":
		return s.Avg, true
	case "pass":
		return s.Pass, true
	case "fail":
		return s.Fail, true
	case "audit":
		return s.Audit, true
	case "year":
		return s.Year, true
	case "dept":
		return s.Dept, true
	case "id":
		return s.ID, true
	case "instructor":
		return s.Instructor, true
	case "title":
		return s.Title, true
	case "uuid":
		return s.UUID, true
	default:
		return nil, false
	}
}

// Room is a single bookable room inside a campus building. Lat and Lon come
// from the geocoder; a room only exists if its building's address geocoded
// successfully, so both are always set on stored records.
type Room struct {
	Fullname  string  `json:"fullname"`
	Shortname string  `json:"shortname"`
	Number    string  `json:"number"`
	Name      string  `json:"name"` // shortname + "_" + number
	Address   string  `json:"address"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Seats     float64 `json:"seats"`
	Type      string  `json:"type"`
	Furniture string  `json:"furniture"`
	Href      string  `json:"href"`
}

func (Room) record() {}

// Field implements Record.
func (r Room) Field(name string) (any, bool) {
	switch name {
	case "fullname":
		return r.Fullname, true
	case "shortname":
		return r.Shortname, true
	case "number":
		return r.Number, true
	case "name":
		return r.Name, true
	case "address":
		return r.Address, true
	case "lat":
		return r.Lat, true
	case "lon":
		return r.Lon, true
	case "seats":
		return r.Seats, true
	case "type":
		return r.Type, true
	case "furniture":
		return r.Furniture, true
	case "href":
		return r.Href, true
	default:
		return nil, false
	}
}
