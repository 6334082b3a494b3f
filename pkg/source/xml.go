package source

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"track2geojson/pkg/types"

	"github.com/clbanning/mxj/v2"
)

// decodeXML expects one root element holding a single repeated record element:
//
//	<track>
//	  <sample><latitudine>..</latitudine><longitudine>..</longitudine>
//	          <data_emitere>..</data_emitere><data_primire>..</data_primire></sample>
//	  ...
//	</track>
//
// Element names other than the four field names are free.
func decodeXML(data []byte) ([]types.Sample, error) {
	xmlMap, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, &types.ParseError{Record: -1, Err: fmt.Errorf("failed to parse XML: %w", err)}
	}

	records, err := extractRecords(xmlMap)
	if err != nil {
		return nil, &types.ParseError{Record: -1, Err: err}
	}

	samples := make([]types.Sample, 0, len(records))
	for i, record := range records {
		recordMap, ok := record.(map[string]interface{})
		if !ok {
			return nil, &types.ParseError{Record: i, Err: errors.New("record is not an element with children")}
		}

		lat, err := xmlNumber(i, recordMap, types.FieldLatitude)
		if err != nil {
			return nil, err
		}
		lon, err := xmlNumber(i, recordMap, types.FieldLongitude)
		if err != nil {
			return nil, err
		}
		emitted, err := xmlString(i, recordMap, types.FieldEmittedAt)
		if err != nil {
			return nil, err
		}
		received, err := xmlString(i, recordMap, types.FieldReceivedAt)
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

func extractRecords(xmlMap map[string]interface{}) ([]interface{}, error) {
	if len(xmlMap) != 1 {
		return nil, fmt.Errorf("expected a single root element, got %d", len(xmlMap))
	}

	var root interface{}
	for _, v := range xmlMap {
		root = v
	}

	rootMap, ok := root.(map[string]interface{})
	if !ok {
		// <track/> or a root with text only
		return nil, nil
	}

	children := childElements(rootMap)
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("expected one repeated record element under the root, got %s", strings.Join(children, ", "))
	}

	// A record element can be a single item or an array
	switch rec := rootMap[children[0]].(type) {
	case []interface{}:
		return rec, nil
	default:
		return []interface{}{rec}, nil
	}
}

// childElements lists element keys, skipping mxj's attribute ("-name") and text ("#text") keys.
func childElements(m map[string]interface{}) []string {
	var keys []string
	for k := range m {
		if strings.HasPrefix(k, "-") || strings.HasPrefix(k, "#") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func xmlString(record int, m map[string]interface{}, field string) (string, error) {
	v, ok := m[field]
	if !ok {
		return "", &types.ParseError{Record: record, Field: field, Err: errors.New("missing")}
	}
	s, ok := v.(string)
	if !ok {
		return "", &types.ParseError{Record: record, Field: field, Err: fmt.Errorf("expected text, got %T", v)}
	}
	return strings.TrimSpace(s), nil
}

func xmlNumber(record int, m map[string]interface{}, field string) (float64, error) {
	s, err := xmlString(record, m, field)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &types.ParseError{Record: record, Field: field, Value: s, Err: errors.New("expected a number")}
	}
	// ParseFloat accepts NaN and Inf, which JSON cannot carry.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &types.ParseError{Record: record, Field: field, Value: s, Err: errors.New("expected a finite number")}
	}
	return f, nil
}
