package ingest

import (
	"archive/zip"
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"campusql/internal/dataset"
)

const indexDocument = "index.htm"

// building is one surviving row of the index's building table.
type building struct {
	shortname string
	fullname  string
	address   string
	link      string
}

// Rooms scrapes the archive's building index, then processes every
// surviving building concurrently: its linked page is parsed and searched
// for a room table, its address geocoded once, and its room rows
// extracted. A building whose page is missing, whose address fails to
// geocode, or whose page has no room table contributes no rooms; results
// are merged only after every building has finished independently.
func Rooms(ctx context.Context, zr *zip.Reader, geo Geocoder) ([]dataset.Record, error) {
	index, ok, err := readEntry(zr, indexDocument)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dataset.NewRequestError("archive has no index document")
	}
	root, err := html.Parse(strings.NewReader(index))
	if err != nil {
		return nil, dataset.WrapRequestError("parse index document", err)
	}

	table := findMarkedTable(root, classBuildingTitle)
	if table == nil {
		return nil, dataset.NewRequestError("index document has no building table")
	}
	rows := tableRows(table)
	if len(rows) == 0 {
		return nil, dataset.NewRequestError("building table has no rows")
	}

	var buildings []building
	for _, row := range rows {
		b := building{
			shortname: cellText(row, classBuildingCode),
			fullname:  cellAnchorText(row, classBuildingTitle),
			address:   cellText(row, classBuildingAddress),
			link:      cellAnchorHref(row, classHref),
		}
		if b.shortname == "" || b.fullname == "" || b.address == "" || b.link == "" {
			continue
		}
		buildings = append(buildings, b)
	}

	results := make([][]dataset.Record, len(buildings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(unitLimit)
	for i, b := range buildings {
		i, b := i, b
		g.Go(func() error {
			rooms, err := buildingRooms(gctx, zr, b, geo)
			if err != nil {
				slog.Debug("skipping building", "shortname", b.shortname, "err", err)
				return nil
			}
			results[i] = rooms
			return nil
		})
	}
	// Unit failures are recorded per-slot, never returned.
	_ = g.Wait()

	var records []dataset.Record
	for _, rooms := range results {
		records = append(records, rooms...)
	}
	return records, nil
}

// buildingRooms processes one building: locate its page, find the room
// table, geocode the address, and extract room rows. Any returned error
// drops the building, not the dataset.
func buildingRooms(ctx context.Context, zr *zip.Reader, b building, geo Geocoder) ([]dataset.Record, error) {
	page, ok, err := readEntry(zr, b.link)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil // linked page absent from archive
	}
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	table := findMarkedTable(root, classRoomNumber)
	if table == nil {
		return nil, nil // building has no rooms listed
	}
	rows := tableRows(table)
	if len(rows) == 0 {
		return nil, nil
	}

	lat, lon, err := geo.Geocode(ctx, b.address)
	if err != nil {
		return nil, err
	}

	var records []dataset.Record
	for _, row := range rows {
		room, ok := buildRoom(row, b, lat, lon)
		if !ok {
			continue
		}
		records = append(records, room)
	}
	return records, nil
}

// buildRoom extracts one room row. Rows missing the number, a numeric seat
// count, furniture type, room type, or the online reference link are
// skipped.
func buildRoom(row *html.Node, b building, lat, lon float64) (dataset.Room, bool) {
	number := cellAnchorText(row, classRoomNumber)
	seatsText := cellText(row, classRoomCapacity)
	furniture := cellText(row, classRoomFurniture)
	roomType := cellText(row, classRoomType)
	href := cellAnchorHref(row, classHref)

	if number == "" || seatsText == "" || furniture == "" || roomType == "" || href == "" {
		return dataset.Room{}, false
	}
	seats, err := strconv.ParseFloat(seatsText, 64)
	if err != nil {
		return dataset.Room{}, false
	}

	return dataset.Room{
		Fullname:  b.fullname,
		Shortname: b.shortname,
		Number:    number,
		Name:      b.shortname + dataset.IDSeparator + number,
		Address:   b.address,
		Lat:       lat,
		Lon:       lon,
		Seats:     seats,
		Type:      roomType,
		Furniture: furniture,
		Href:      href,
	}, true
}
