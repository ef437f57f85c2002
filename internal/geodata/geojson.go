// Package geodata loads postcode boundary and operator territory collections
// from GeoJSON files on disk. It is the external-data edge of the engine:
// everything it returns is plain immutable values for the resolver, and the
// coordinate reference system is assumed to be resolved upstream.
package geodata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sunfolio/gridmatch/internal/geom"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   featureGeometry `json:"geometry"`
}

type featureGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// rings extracts the outer ring of each polygon in the geometry. Polygon
// yields one ring, MultiPolygon one per member; holes are ignored. The
// GeoJSON closing vertex (first == last) is dropped so rings follow the
// engine's open-ring convention.
func (g featureGeometry) rings() ([]geom.Polygon, error) {
	switch g.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode polygon coordinates: %w", err)
		}
		ring, err := toRing(coords)
		if err != nil {
			return nil, err
		}
		return []geom.Polygon{ring}, nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode multipolygon coordinates: %w", err)
		}
		rings := make([]geom.Polygon, 0, len(coords))
		for _, polygon := range coords {
			ring, err := toRing(polygon)
			if err != nil {
				return nil, err
			}
			rings = append(rings, ring)
		}
		return rings, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func toRing(polygon [][][]float64) (geom.Polygon, error) {
	if len(polygon) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}
	outer := polygon[0]
	ring := make(geom.Polygon, 0, len(outer))
	for _, pos := range outer {
		if len(pos) < 2 {
			return nil, fmt.Errorf("position has %d ordinates, want at least 2", len(pos))
		}
		ring = append(ring, geom.Point{X: pos[0], Y: pos[1]})
	}
	// GeoJSON rings repeat the first position at the end.
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring, nil
}

// property returns the first present property among keys, as a trimmed
// string. Numeric JSON values are formatted without a decimal point when
// integral, so postcodes encoded as numbers still round-trip.
func (f feature) property(keys ...string) string {
	for _, key := range keys {
		val, ok := f.Properties[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			return strings.TrimSpace(v)
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func decodeCollection(data []byte) (*featureCollection, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	return &fc, nil
}
