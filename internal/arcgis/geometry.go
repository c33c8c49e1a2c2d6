package arcgis

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

const metersPerDegreeLat = 111320.0

// Envelope is a WGS84 bounding box in the shape the REST API expects.
type Envelope struct {
	bounds *geom.Bounds
}

// SearchEnvelope builds an envelope of radiusM meters around the
// coordinate. Longitude degrees shrink with latitude, so the east-west
// delta is scaled by cos(lat).
func SearchEnvelope(lat, lng, radiusM float64) (*Envelope, error) {
	if radiusM <= 0 {
		return nil, eris.Errorf("arcgis: radius must be positive, got %v", radiusM)
	}
	metersPerDegreeLng := metersPerDegreeLat * math.Cos(lat*math.Pi/180)
	if metersPerDegreeLng <= 0 {
		return nil, eris.Errorf("arcgis: cannot compute longitude delta at latitude %v", lat)
	}

	deltaLat := radiusM / metersPerDegreeLat
	deltaLng := radiusM / metersPerDegreeLng

	b := geom.NewBounds(geom.XY)
	b.Set(lng-deltaLng, lat-deltaLat, lng+deltaLng, lat+deltaLat)
	return &Envelope{bounds: b}, nil
}

// JSON renders the ArcGIS envelope geometry parameter.
func (e *Envelope) JSON() string {
	return fmt.Sprintf(
		`{"xmin":%g,"ymin":%g,"xmax":%g,"ymax":%g,"spatialReference":{"wkid":4326}}`,
		e.bounds.Min(0), e.bounds.Min(1), e.bounds.Max(0), e.bounds.Max(1),
	)
}
