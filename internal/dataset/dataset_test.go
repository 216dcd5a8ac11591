package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "sections", want: KindSections},
		{in: "rooms", want: KindRooms},
		{in: "courses", wantErr: true},
		{in: "", wantErr: true},
		{in: "Sections", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsRequestError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "plain", id: "sections"},
		{name: "mixed case", id: "UBCRooms"},
		{name: "empty", id: "", wantErr: true},
		{name: "whitespace only", id: "   ", wantErr: true},
		{name: "underscore", id: "my_sections", wantErr: true},
		{name: "leading underscore", id: "_x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsRequestError(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Key
		wantErr bool
	}{
		{name: "section key", raw: "sections_avg", want: Key{Dataset: "sections", Field: "avg"}},
		{name: "room key", raw: "rooms_seats", want: Key{Dataset: "rooms", Field: "seats"}},
		{name: "no separator", raw: "avg", wantErr: true},
		{name: "empty dataset", raw: "_avg", wantErr: true},
		{name: "empty field", raw: "sections_", wantErr: true},
		{name: "double separator", raw: "sections_avg_extra", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsRequestError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestFieldCategories(t *testing.T) {
	assert.True(t, IsNumericField(KindSections, "avg"))
	assert.True(t, IsNumericField(KindSections, "year"))
	assert.False(t, IsNumericField(KindSections, "dept"))
	assert.True(t, IsStringField(KindSections, "uuid"))
	assert.False(t, IsStringField(KindSections, "pass"))

	assert.True(t, IsNumericField(KindRooms, "lat"))
	assert.True(t, IsStringField(KindRooms, "furniture"))
	assert.False(t, IsField(KindRooms, "avg"))
	assert.False(t, IsField(KindSections, "seats"))
	assert.False(t, IsField(Kind("bogus"), "avg"))
}

func TestRecordField(t *testing.T) {
	sec := Section{Avg: 91.5, Dept: "cpsc", ID: "310", UUID: "42"}
	v, ok := sec.Field("avg")
	require.True(t, ok)
	assert.Equal(t, 91.5, v)
	v, ok = sec.Field("dept")
	require.True(t, ok)
	assert.Equal(t, "cpsc", v)
	_, ok = sec.Field("seats")
	assert.False(t, ok)

	room := Room{Name: "DMP_310", Seats: 144}
	v, ok = room.Field("seats")
	require.True(t, ok)
	assert.Equal(t, 144.0, v)
	_, ok = room.Field("avg")
	assert.False(t, ok)
}

func TestCodecRoundTrip(t *testing.T) {
	records := []Record{
		Section{Avg: 80, Pass: 100, Dept: "math", ID: "100", UUID: "1"},
		Section{Avg: 90, Pass: 200, Dept: "cpsc", ID: "110", UUID: "2"},
	}
	stored, err := Encode(KindSections, records)
	require.NoError(t, err)
	assert.Equal(t, KindSections, stored.Kind)

	decoded, err := stored.Decode()
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestDecodeUnknownKind(t *testing.T) {
	stored := Stored{Kind: "bogus", Records: []byte("[]")}
	_, err := stored.Decode()
	require.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	req := NewRequestError("bad input")
	assert.True(t, IsRequestError(req))
	assert.False(t, IsNotFound(req))

	wrapped := WrapRequestError("context", assert.AnError)
	assert.True(t, IsRequestError(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Contains(t, wrapped.Error(), "context")

	nf := NewNotFoundError("courses")
	assert.True(t, IsNotFound(nf))
	assert.Contains(t, nf.Error(), "courses")

	tl := NewResultTooLargeError(5001, 5000)
	assert.True(t, IsResultTooLarge(tl))
	assert.False(t, IsRequestError(tl))
	assert.Contains(t, tl.Error(), "5001")
}
