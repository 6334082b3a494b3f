package source

import (
	"errors"
	"fmt"

	"track2geojson/pkg/types"

	"github.com/tidwall/gjson"
)

func decodeJSON(data []byte) ([]types.Sample, error) {
	if !gjson.ValidBytes(data) {
		return nil, &types.ParseError{Record: -1, Err: errors.New("invalid JSON document")}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, &types.ParseError{Record: -1, Err: fmt.Errorf("expected a JSON array of records, got %s", doc.Type)}
	}

	records := doc.Array()
	samples := make([]types.Sample, 0, len(records))
	for i, rec := range records {
		if !rec.IsObject() {
			return nil, &types.ParseError{Record: i, Err: fmt.Errorf("expected an object, got %s", rec.Type)}
		}

		lat, err := jsonNumber(i, rec, types.FieldLatitude)
		if err != nil {
			return nil, err
		}
		lon, err := jsonNumber(i, rec, types.FieldLongitude)
		if err != nil {
			return nil, err
		}
		emitted, err := jsonString(i, rec, types.FieldEmittedAt)
		if err != nil {
			return nil, err
		}
		received, err := jsonString(i, rec, types.FieldReceivedAt)
		if err != nil {
			return nil, err
		}

		sample, err := types.NewSample(i, lat, lon, emitted, received)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func jsonNumber(record int, rec gjson.Result, field string) (float64, error) {
	v := rec.Get(field)
	if !v.Exists() {
		return 0, &types.ParseError{Record: record, Field: field, Err: errors.New("missing")}
	}
	if v.Type != gjson.Number {
		return 0, &types.ParseError{Record: record, Field: field, Value: v.Raw, Err: fmt.Errorf("expected a number, got %s", v.Type)}
	}
	return v.Float(), nil
}

func jsonString(record int, rec gjson.Result, field string) (string, error) {
	v := rec.Get(field)
	if !v.Exists() {
		return "", &types.ParseError{Record: record, Field: field, Err: errors.New("missing")}
	}
	if v.Type != gjson.String {
		return "", &types.ParseError{Record: record, Field: field, Value: v.Raw, Err: fmt.Errorf("expected a string, got %s", v.Type)}
	}
	return v.Str, nil
}
