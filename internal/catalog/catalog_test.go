package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusql/internal/dataset"
	"campusql/internal/store"
)

func openCatalog(t *testing.T) (*Catalog, store.Store) {
	t.Helper()
	st, err := store.OpenDisk(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return Open(st), st
}

func sections(avgs ...float64) []dataset.Record {
	records := make([]dataset.Record, len(avgs))
	for i, avg := range avgs {
		records[i] = dataset.Section{Avg: avg, Dept: "cpsc", ID: "310", UUID: "1"}
	}
	return records
}

func TestAddListRemove(t *testing.T) {
	cat, _ := openCatalog(t)

	ids, err := cat.Add("courses", dataset.KindSections, sections(70, 80, 90))
	require.NoError(t, err)
	assert.Equal(t, []string{"courses"}, ids)

	ids, err = cat.Add("buildings", dataset.KindRooms, []dataset.Record{
		dataset.Room{Name: "DMP_310", Seats: 144},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"buildings", "courses"}, ids)

	infos, err := cat.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, Info{ID: "buildings", Kind: dataset.KindRooms, RowCount: 1}, infos[0])
	assert.Equal(t, Info{ID: "courses", Kind: dataset.KindSections, RowCount: 3}, infos[1])

	require.NoError(t, cat.Remove("courses"))
	infos, err = cat.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "buildings", infos[0].ID)
}

func TestAddRejectsDuplicateID(t *testing.T) {
	cat, _ := openCatalog(t)

	_, err := cat.Add("courses", dataset.KindSections, sections(80))
	require.NoError(t, err)

	_, err = cat.Add("courses", dataset.KindRooms, nil)
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
}

func TestAddRejectsInvalidID(t *testing.T) {
	cat, _ := openCatalog(t)

	for _, id := range []string{"", "  ", "bad_id"} {
		_, err := cat.Add(id, dataset.KindSections, sections(80))
		require.Error(t, err, id)
		assert.True(t, dataset.IsRequestError(err), id)
	}
}

func TestRemoveAbsentIsNotFound(t *testing.T) {
	cat, _ := openCatalog(t)

	err := cat.Remove("ghost")
	require.Error(t, err)
	assert.True(t, dataset.IsNotFound(err))
}

func TestRemoveInvalidIDIsRequestError(t *testing.T) {
	cat, _ := openCatalog(t)

	err := cat.Remove("bad_id")
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))
}

// A unit written directly to storage by another process instance must be
// visible to the next mutating operation.
func TestResyncSeesForeignWrites(t *testing.T) {
	cat, st := openCatalog(t)

	unit, err := dataset.Encode(dataset.KindSections, sections(85))
	require.NoError(t, err)
	require.NoError(t, st.Write("foreign", unit))

	_, err = cat.Add("foreign", dataset.KindSections, sections(90))
	require.Error(t, err)
	assert.True(t, dataset.IsRequestError(err))

	require.NoError(t, cat.Remove("foreign"))
}

func TestRecordsAndKinds(t *testing.T) {
	cat, _ := openCatalog(t)

	_, err := cat.Add("courses", dataset.KindSections, sections(70, 95))
	require.NoError(t, err)

	records, kind, err := cat.Records("courses")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindSections, kind)
	assert.Len(t, records, 2)

	_, _, err = cat.Records("ghost")
	require.Error(t, err)
	assert.True(t, dataset.IsNotFound(err))

	kinds, err := cat.Kinds()
	require.NoError(t, err)
	assert.Equal(t, map[string]dataset.Kind{"courses": dataset.KindSections}, kinds)
}

// Catalog state survives a process restart: a fresh catalog over the same
// store sees everything the previous one added.
func TestReopenSeesPersistedDatasets(t *testing.T) {
	st, err := store.OpenDisk(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	first := Open(st)
	_, err = first.Add("courses", dataset.KindSections, sections(61, 72, 83))
	require.NoError(t, err)

	second := Open(st)
	records, kind, err := second.Records("courses")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindSections, kind)
	assert.Len(t, records, 3)
}
