package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusql/internal/dataset"
	"campusql/internal/testutil"
)

func courseJSON(sections ...map[string]any) string {
	raw, _ := json.Marshal(map[string]any{"result": sections})
	return string(raw)
}

func validSection(uuid string) map[string]any {
	return map[string]any{
		"Avg": 85.5, "Pass": 100.0, "Fail": 5.0, "Audit": 1.0, "Year": "2015",
		"Subject": "cpsc", "Course": 310.0, "Professor": "hoare",
		"Title": "software eng", "id": uuid,
	}
}

func TestDecode(t *testing.T) {
	t.Run("valid archive", func(t *testing.T) {
		content := testutil.ZipBase64(t, map[string]string{"courses/CPSC310": "{}"})
		zr, err := Decode(content)
		require.NoError(t, err)
		assert.NotEmpty(t, zr.File)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := Decode("not base64 at all!!!")
		require.Error(t, err)
		assert.True(t, dataset.IsRequestError(err))
	})

	t.Run("base64 but not zip", func(t *testing.T) {
		content := base64.StdEncoding.EncodeToString([]byte("just some text"))
		_, err := Decode(content)
		require.Error(t, err)
		assert.True(t, dataset.IsRequestError(err))
	})

	t.Run("zip magic with corrupt body", func(t *testing.T) {
		content := base64.StdEncoding.EncodeToString([]byte("PK\x03\x04garbage"))
		_, err := Decode(content)
		require.Error(t, err)
		assert.True(t, dataset.IsRequestError(err))
	})
}

func TestSectionsIngestion(t *testing.T) {
	content := testutil.ZipBase64(t, map[string]string{
		"courses/":          "",
		"courses/CPSC310":   courseJSON(validSection("1"), validSection("2")),
		"courses/MATH200":   courseJSON(validSection("3")),
		"courses/notjson":   "this is not a course file",
		"courses/.DS_Store": "junk",
		"outside.txt":       "ignored",
	})

	records, err := Dataset(context.Background(), dataset.KindSections, content, nil)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	sec, ok := records[0].(dataset.Section)
	require.True(t, ok)
	assert.Equal(t, 85.5, sec.Avg)
	assert.Equal(t, "cpsc", sec.Dept)
	assert.Equal(t, "310", sec.ID)    // numeric course number rendered as text
	assert.Equal(t, 2015.0, sec.Year) // string year parsed as number
	assert.Equal(t, "hoare", sec.Instructor)
}

func TestSectionsSkipInvalidElements(t *testing.T) {
	missingField := validSection("9")
	delete(missingField, "Professor")
	badAvg := validSection("10")
	badAvg["Avg"] = "not a number"

	content := testutil.ZipBase64(t, map[string]string{
		"courses/":        "",
		"courses/CPSC110": courseJSON(validSection("8"), missingField, badAvg),
	})

	records, err := Dataset(context.Background(), dataset.KindSections, content, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "8", records[0].(dataset.Section).UUID)
}

func TestSectionsMissingContainer(t *testing.T) {
	content := testutil.ZipBase64(t, map[string]string{
		"classes/CPSC310": courseJSON(validSection("1")),
	})
	_, err := Dataset(context.Background(), dataset.KindSections, content, nil)
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
	assert.Contains(t, err.Error(), "courses/")
}

func TestSectionsNoValidRecords(t *testing.T) {
	content := testutil.ZipBase64(t, map[string]string{
		"courses/":        "",
		"courses/CPSC310": courseJSON(),
	})
	_, err := Dataset(context.Background(), dataset.KindSections, content, nil)
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
}

func campusArchive(t *testing.T) string {
	t.Helper()
	index := testutil.IndexHTML([]testutil.Building{
		{Code: "DMP", Title: "Hugh Dempster Pavilion", Address: "6245 Agronomy Road V6T 1Z4", Link: "./buildings/DMP.htm"},
		{Code: "ANGU", Title: "Henry Angus", Address: "2053 Main Mall", Link: "./buildings/ANGU.htm"},
		{Code: "GONE", Title: "Demolished Hall", Address: "1 Nowhere Lane", Link: "./buildings/GONE.htm"},
	})
	dmp := testutil.BuildingHTML([]testutil.RoomRow{
		{Number: "310", Seats: "144", Furniture: "Classroom-Fixed Tables/Movable Chairs", Type: "Tiered Large Group", Href: "http://example.com/DMP-310"},
		{Number: "101", Seats: "forty", Furniture: "Classroom-Movable Chairs", Type: "Small Group", Href: "http://example.com/DMP-101"},
	})
	angu := testutil.BuildingHTML([]testutil.RoomRow{
		{Number: "098", Seats: "260", Furniture: "Classroom-Fixed Tables/Fixed Chairs", Type: "Tiered Large Group", Href: "http://example.com/ANGU-098"},
	})
	return testutil.ZipBase64(t, map[string]string{
		"index.htm":          index,
		"buildings/DMP.htm":  dmp,
		"buildings/ANGU.htm": angu,
		// GONE.htm deliberately absent
	})
}

func TestRoomsIngestion(t *testing.T) {
	geo := &testutil.FakeGeocoder{Lat: 49.26, Lon: -123.25}
	records, err := Dataset(context.Background(), dataset.KindRooms, campusArchive(t), geo)
	require.NoError(t, err)

	// DMP 101 has a non-numeric seat count and GONE has no page, so two
	// rooms survive.
	require.Len(t, records, 2)

	byName := make(map[string]dataset.Room, len(records))
	for _, rec := range records {
		room := rec.(dataset.Room)
		byName[room.Name] = room
	}
	dmp, ok := byName["DMP_310"]
	require.True(t, ok)
	assert.Equal(t, "Hugh Dempster Pavilion", dmp.Fullname)
	assert.Equal(t, "DMP", dmp.Shortname)
	assert.Equal(t, "310", dmp.Number)
	assert.Equal(t, "6245 Agronomy Road V6T 1Z4", dmp.Address)
	assert.Equal(t, 49.26, dmp.Lat)
	assert.Equal(t, -123.25, dmp.Lon)
	assert.Equal(t, 144.0, dmp.Seats)
	assert.Equal(t, "Tiered Large Group", dmp.Type)
	assert.Equal(t, "Classroom-Fixed Tables/Movable Chairs", dmp.Furniture)
	assert.Equal(t, "http://example.com/DMP-310", dmp.Href)

	_, ok = byName["ANGU_098"]
	assert.True(t, ok)

	// the absent building page never reaches the geocoder
	assert.NotContains(t, geo.Addresses(), "1 Nowhere Lane")
}

func TestRoomsGeocodeFailureDropsBuilding(t *testing.T) {
	geo := &testutil.FakeGeocoder{
		Lat:  49.26,
		Lon:  -123.25,
		Fail: map[string]error{"6245 Agronomy Road V6T 1Z4": fmt.Errorf("unresolvable")},
	}
	records, err := Dataset(context.Background(), dataset.KindRooms, campusArchive(t), geo)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ANGU_098", records[0].(dataset.Room).Name)
}

func TestRoomsMissingIndex(t *testing.T) {
	content := testutil.ZipBase64(t, map[string]string{
		"buildings/DMP.htm": testutil.BuildingHTML(nil),
	})
	_, err := Dataset(context.Background(), dataset.KindRooms, content, &testutil.FakeGeocoder{})
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
}

func TestRoomsIndexWithoutBuildingTable(t *testing.T) {
	content := testutil.ZipBase64(t, map[string]string{
		"index.htm": "<html><body><table><tbody><tr><td>plain</td></tr></tbody></table></body></html>",
	})
	_, err := Dataset(context.Background(), dataset.KindRooms, content, &testutil.FakeGeocoder{})
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
}

func TestDatasetRejectsUnknownKind(t *testing.T) {
	content := testutil.ZipBase64(t, map[string]string{"index.htm": ""})
	_, err := Dataset(context.Background(), dataset.Kind("bogus"), content, nil)
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
}

func TestHTTPGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/6245 Agronomy Road V6T 1Z4":
			fmt.Fprint(w, `{"lat": 49.26125, "lon": -123.24807}`)
		case "/1 Nowhere Lane":
			fmt.Fprint(w, `{"error": "address not found"}`)
		case "/empty":
			fmt.Fprint(w, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	geo := NewHTTPGeocoder(srv.URL)
	ctx := context.Background()

	lat, lon, err := geo.Geocode(ctx, "6245 Agronomy Road V6T 1Z4")
	require.NoError(t, err)
	assert.Equal(t, 49.26125, lat)
	assert.Equal(t, -123.24807, lon)

	_, _, err = geo.Geocode(ctx, "1 Nowhere Lane")
	require.ErrorContains(t, err, "address not found")

	_, _, err = geo.Geocode(ctx, "empty")
	require.ErrorContains(t, err, "no coordinates")

	_, _, err = geo.Geocode(ctx, "missing")
	require.ErrorContains(t, err, "HTTP 404")
}
