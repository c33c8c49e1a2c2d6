package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(
		WithHTTPClient(srv.Client()),
		WithPageSize(2),
		WithRateLimit(0),
		WithReferer("https://gis.example.test/"),
	)
	return c, srv.URL + "/layer/0"
}

func TestQueryFeatures_PagesUntilShortResponse(t *testing.T) {
	var offsets []string
	c, layerURL := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("resultOffset")
		offsets = append(offsets, offset)
		if offset == "0" {
			fmt.Fprint(w, `{"features":[{"attributes":{"PropertyScheduleText":"100"}},{"attributes":{"PropertyScheduleText":"200"}}]}`)
			return
		}
		fmt.Fprint(w, `{"features":[{"attributes":{"PropertyScheduleText":"300"}}]}`)
	})

	features, err := c.QueryFeatures(context.Background(), layerURL, Query{})
	require.NoError(t, err)
	assert.Len(t, features, 3)
	assert.Equal(t, []string{"0", "2"}, offsets)
}

func TestQueryFeatures_SendsRefererAndDefaults(t *testing.T) {
	c, layerURL := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://gis.example.test/", r.Header.Get("Referer"))
		assert.Equal(t, "1=1", r.URL.Query().Get("where"))
		assert.Equal(t, "*", r.URL.Query().Get("outFields"))
		assert.Equal(t, "false", r.URL.Query().Get("returnGeometry"))
		fmt.Fprint(w, `{"features":[]}`)
	})

	_, err := c.QueryFeatures(context.Background(), layerURL, Query{})
	require.NoError(t, err)
}

func TestQueryFeatures_ContinuesThroughClampedPages(t *testing.T) {
	// A server whose maxRecordCount is below the requested page size
	// returns clamped pages flagged with exceededTransferLimit.
	schedules := []string{"100", "200", "300", "400", "500"}
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("resultOffset")
		offsets = append(offsets, offset)
		var i int
		fmt.Sscanf(offset, "%d", &i)
		exceeded := i+1 < len(schedules)
		fmt.Fprintf(w, `{"features":[{"attributes":{"PropertyScheduleText":"%s"}}],"exceededTransferLimit":%t}`,
			schedules[i], exceeded)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(
		WithHTTPClient(srv.Client()),
		WithPageSize(4),
		WithRateLimit(0),
		WithReferer("https://gis.example.test/"),
	)

	features, err := c.QueryFeatures(context.Background(), srv.URL+"/layer/0", Query{})
	require.NoError(t, err)
	require.Len(t, features, len(schedules))
	assert.Equal(t, "500", features[4].String("PropertyScheduleText"))
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, offsets)
}

func TestQueryFeatures_MaxRecordsTruncates(t *testing.T) {
	c, layerURL := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":[{"attributes":{}},{"attributes":{}}]}`)
	})

	features, err := c.QueryFeatures(context.Background(), layerURL, Query{MaxRecords: 1})
	require.NoError(t, err)
	assert.Len(t, features, 1)
}

func TestQueryFeatures_ErrorEnvelope(t *testing.T) {
	c, layerURL := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The REST API wraps errors in a 200 response.
		fmt.Fprint(w, `{"error":{"code":498,"message":"Invalid token"}}`)
	})

	_, err := c.QueryFeatures(context.Background(), layerURL, Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestQueryFeatures_GeometryParams(t *testing.T) {
	env, err := SearchEnvelope(39.6, -106.0, 400)
	require.NoError(t, err)

	c, layerURL := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "esriGeometryEnvelope", q.Get("geometryType"))
		assert.Equal(t, "esriSpatialRelIntersects", q.Get("spatialRel"))
		assert.Contains(t, q.Get("geometry"), `"wkid":4326`)
		fmt.Fprint(w, `{"features":[]}`)
	})

	_, err = c.QueryFeatures(context.Background(), layerURL, Query{Geometry: env})
	require.NoError(t, err)
}

func TestFeatureString_CoercesNumerics(t *testing.T) {
	f := Feature{Attributes: map[string]any{
		"SCHEDULE": float64(6500123),
		"NAME":     "  Alpine  ",
		"MISSING":  nil,
	}}
	assert.Equal(t, "6500123", f.String("SCHEDULE"))
	assert.Equal(t, "Alpine", f.String("NAME"))
	assert.Equal(t, "", f.String("MISSING"))
	assert.Equal(t, "", f.String("ABSENT"))
}

func TestSearchEnvelope_Bounds(t *testing.T) {
	env, err := SearchEnvelope(39.6, -106.0, 400)
	require.NoError(t, err)

	var got struct {
		Xmin             float64 `json:"xmin"`
		Ymin             float64 `json:"ymin"`
		Xmax             float64 `json:"xmax"`
		Ymax             float64 `json:"ymax"`
		SpatialReference struct {
			Wkid int `json:"wkid"`
		} `json:"spatialReference"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.JSON()), &got))

	assert.Equal(t, 4326, got.SpatialReference.Wkid)
	assert.Less(t, got.Xmin, -106.0)
	assert.Greater(t, got.Xmax, -106.0)
	assert.Less(t, got.Ymin, 39.6)
	assert.Greater(t, got.Ymax, 39.6)
	// 400 m each way is ~0.0072 degrees of latitude; longitude degrees
	// shrink by cos(lat), so the east-west span comes out wider.
	assert.InDelta(t, 0.00719, got.Ymax-got.Ymin, 0.0001)
	assert.Greater(t, got.Xmax-got.Xmin, got.Ymax-got.Ymin)
}

func TestSearchEnvelope_RejectsBadRadius(t *testing.T) {
	_, err := SearchEnvelope(39.6, -106.0, 0)
	assert.Error(t, err)
}
