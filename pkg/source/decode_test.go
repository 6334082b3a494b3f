package source

import (
	"errors"
	"strings"
	"testing"

	"track2geojson/pkg/types"
)

const sampleJSON = `[
  {"latitudine": 44.0, "longitudine": 26.0, "data_emitere": "2024-01-15 10:00:00.000000+00:00", "data_primire": "2024-01-15 10:00:01.000000+00:00"},
  {"latitudine": 44.0, "longitudine": 26.1, "data_emitere": "2024-01-15 10:00:10.500000+00:00", "data_primire": "2024-01-15 10:00:11.000000+00:00", "extra": true}
]`

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<track id="12905278">
  <sample>
    <latitudine>44.0</latitudine>
    <longitudine>26.0</longitudine>
    <data_emitere>2024-01-15 10:00:00.000000+00:00</data_emitere>
    <data_primire>2024-01-15 10:00:01.000000+00:00</data_primire>
  </sample>
  <sample>
    <latitudine> 44.0 </latitudine>
    <longitudine>26.1</longitudine>
    <data_emitere>2024-01-15 10:00:10.500000+00:00</data_emitere>
    <data_primire>2024-01-15 10:00:11.000000+00:00</data_primire>
  </sample>
</track>`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		location string
		data     string
		expected Format
	}{
		{"json extension", "data/track.json", "<not really>", FormatJSON},
		{"geojson extension", "track.GEOJSON", "", FormatJSON},
		{"xml extension", "track.xml", "[]", FormatXML},
		{"url with query", "https://example.com/track.xml?day=1", "", FormatXML},
		{"sniff xml", "track.dat", "  \n<track/>", FormatXML},
		{"sniff json", "track.dat", "[{}]", FormatJSON},
		{"empty defaults to json", "", "", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.location, []byte(tt.data)); got != tt.expected {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.location, got, tt.expected)
			}
		})
	}
}

func checkTwoSamples(t *testing.T, samples []types.Sample) {
	t.Helper()
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[1].Latitude != 44.0 || samples[1].Longitude != 26.1 {
		t.Errorf("sample 1 position = %v,%v", samples[1].Latitude, samples[1].Longitude)
	}
	if samples[1].Timestamp != 1705312810 {
		t.Errorf("sample 1 timestamp = %d, want 1705312810", samples[1].Timestamp)
	}
	if samples[0].ReceivedAt != "2024-01-15 10:00:01.000000+00:00" {
		t.Errorf("sample 0 data_primire = %q", samples[0].ReceivedAt)
	}
	for i, s := range samples {
		if s.Seq != i {
			t.Errorf("sample %d Seq = %d", i, s.Seq)
		}
	}
}

func TestDecode_JSON(t *testing.T) {
	samples, err := Decode(FormatJSON, []byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	checkTwoSamples(t, samples)
}

func TestDecode_XML(t *testing.T) {
	samples, err := Decode(FormatXML, []byte(sampleXML))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	checkTwoSamples(t, samples)
}

func TestDecode_XMLSingleRecord(t *testing.T) {
	doc := `<track><sample><latitudine>44</latitudine><longitudine>26</longitudine>` +
		`<data_emitere>2024-01-15 10:00:00+00:00</data_emitere><data_primire>x</data_primire></sample></track>`

	samples, err := Decode(FormatXML, []byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if samples[0].ReceivedAt != "x" {
		t.Errorf("data_primire = %q, want it echoed verbatim", samples[0].ReceivedAt)
	}
}

func TestDecode_EmptyDocuments(t *testing.T) {
	for _, tt := range []struct {
		format Format
		data   string
	}{
		{FormatJSON, "[]"},
		{FormatXML, "<track/>"},
		{FormatXML, "<track></track>"},
	} {
		samples, err := Decode(tt.format, []byte(tt.data))
		if err != nil {
			t.Errorf("Decode(%s, %q) failed: %v", tt.format, tt.data, err)
			continue
		}
		if len(samples) != 0 {
			t.Errorf("Decode(%s, %q) = %d samples, want 0", tt.format, tt.data, len(samples))
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	const ok = `"data_emitere": "2024-01-15 10:00:00+00:00", "data_primire": "r"`

	tests := []struct {
		name        string
		format      Format
		data        string
		expectField string
		expectIndex int
	}{
		{"invalid json", FormatJSON, `[{"latitudine": 1,`, "", -1},
		{"not an array", FormatJSON, `{"latitudine": 1}`, "", -1},
		{"record not an object", FormatJSON, `[1]`, "", 0},
		{"missing latitude", FormatJSON, `[{"longitudine": 1, ` + ok + `}]`, types.FieldLatitude, 0},
		{"latitude as string", FormatJSON, `[{"latitudine": "44", "longitudine": 1, ` + ok + `}]`, types.FieldLatitude, 0},
		{"missing data_primire", FormatJSON, `[{"latitudine": 1, "longitudine": 1, "data_emitere": "2024-01-15 10:00:00+00:00"}]`, types.FieldReceivedAt, 0},
		{"bad timestamp second record", FormatJSON, `[{"latitudine": 1, "longitudine": 1, ` + ok + `}, {"latitudine": 1, "longitudine": 1, "data_emitere": "yesterday", "data_primire": "r"}]`, types.FieldEmittedAt, 1},
		{"malformed xml", FormatXML, `<track><sample>`, "", -1},
		{"mixed record elements", FormatXML, `<track><a/><b/></track>`, "", -1},
		{"non numeric longitude", FormatXML, `<track><s><latitudine>1</latitudine><longitudine>east</longitudine></s></track>`, types.FieldLongitude, 0},
		{"nan latitude", FormatXML, `<track><s><latitudine>NaN</latitudine><longitudine>2</longitudine></s></track>`, types.FieldLatitude, 0},
		{"infinite longitude", FormatXML, `<track><s><latitudine>1</latitudine><longitudine>Inf</longitudine></s></track>`, types.FieldLongitude, 0},
		{"missing emitted", FormatXML, `<track><s><latitudine>1</latitudine><longitudine>2</longitudine></s></track>`, types.FieldEmittedAt, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.format, []byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, types.ErrParse) {
				t.Errorf("error %v is not ErrParse", err)
			}
			var pe *types.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if pe.Field != tt.expectField {
				t.Errorf("Field = %q, want %q", pe.Field, tt.expectField)
			}
			if pe.Record != tt.expectIndex {
				t.Errorf("Record = %d, want %d", pe.Record, tt.expectIndex)
			}
		})
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode(Format("csv"), []byte("a,b"))
	if err == nil || !strings.Contains(err.Error(), "csv") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}
