// Package arcgis queries hosted ArcGIS feature layers over the REST
// API: the county parcel layer that supplies listings and the
// municipal license rosters.
package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultPageSize = 1000

// Client issues paged queries against feature layer endpoints. The
// county's services require a Referer header matching their GIS host,
// so every request carries one.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	referer    string
	apiKey     string
	pageSize   int
}

// Option configures a Client.
type Option func(*Client)

// WithReferer sets the Referer header sent with every request.
func WithReferer(referer string) Option {
	return func(c *Client) { c.referer = referer }
}

// WithAPIKey sets the token appended to every query.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithPageSize overrides the records-per-page default.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative
// disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client, mostly for
// tests against httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a Client with a 30s request timeout and a gentle
// default rate limit.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(4), 2),
		pageSize:   defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Feature is one row returned by a layer query.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
}

// Query describes one layer query. An empty Where defaults to "1=1";
// empty OutFields defaults to "*".
type Query struct {
	Where      string
	OutFields  []string
	Geometry   *Envelope
	MaxRecords int
}

type queryPage struct {
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
	Error                 *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// QueryFeatures pages through the layer until the response comes up
// short, collecting every feature. A server whose maxRecordCount is
// below the requested page size clamps responses and flags
// exceededTransferLimit, so a short page only ends the walk when that
// flag is clear. The offset advances by what each page actually held.
func (c *Client) QueryFeatures(ctx context.Context, layerURL string, q Query) ([]Feature, error) {
	log := zap.L().With(
		zap.String("component", "arcgis_client"),
		zap.String("layer", layerURL),
	)

	var collected []Feature
	offset := 0
	for {
		page, err := c.queryPage(ctx, layerURL, q, offset)
		if err != nil {
			return nil, err
		}
		collected = append(collected, page.Features...)

		if q.MaxRecords > 0 && len(collected) >= q.MaxRecords {
			collected = collected[:q.MaxRecords]
			break
		}
		if len(page.Features) == 0 {
			break
		}
		if len(page.Features) < c.pageSize && !page.ExceededTransferLimit {
			break
		}
		offset += len(page.Features)
	}

	log.Info("layer query complete", zap.Int("features", len(collected)))
	return collected, nil
}

func (c *Client) queryPage(ctx context.Context, layerURL string, q Query, offset int) (*queryPage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "arcgis: rate limiter")
		}
	}

	params := url.Values{}
	params.Set("f", "json")
	params.Set("where", orDefault(q.Where, "1=1"))
	params.Set("outFields", orDefault(strings.Join(q.OutFields, ","), "*"))
	params.Set("returnGeometry", "false")
	params.Set("outSR", "4326")
	params.Set("resultOffset", strconv.Itoa(offset))
	params.Set("resultRecordCount", strconv.Itoa(c.pageSize))
	if q.Geometry != nil {
		params.Set("geometry", q.Geometry.JSON())
		params.Set("geometryType", "esriGeometryEnvelope")
		params.Set("spatialRel", "esriSpatialRelIntersects")
		params.Set("inSR", "4326")
	}
	if c.apiKey != "" {
		params.Set("token", c.apiKey)
	}

	endpoint := strings.TrimRight(layerURL, "/") + "/query"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: build request")
	}
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: query layer")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("arcgis: layer query returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: read response")
	}

	var page queryPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, eris.Wrap(err, "arcgis: decode response")
	}
	// The REST API reports errors inside a 200 response.
	if page.Error != nil {
		return nil, eris.Errorf("arcgis: layer error %d: %s", page.Error.Code, page.Error.Message)
	}
	return &page, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// String returns the attribute as trimmed text, tolerating numeric
// values the way feature services deliver them.
func (f Feature) String(field string) string {
	v, ok := f.Attributes[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
