package arcgis

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

// Parcel layer field names.
const (
	fieldSchedule     = "PropertyScheduleText"
	fieldRegistration = "HC_RegistrationsOriginalCleaned"
	fieldOwner        = "OwnerFullName"
	fieldMailing      = "OwnerContactPublicMailingAddr"
	fieldSitus        = "SitusAddress"
	fieldDescription  = "BriefPropertyDescription"
	fieldSubdivision  = "SubdivisionName"
)

const detailURLPrefix = "https://gis.summitcountyco.gov/map/DetailData.aspx?Schno="

var (
	brTagRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	unitRe    = regexp.MustCompile(`(?i)UNIT\s+([A-Za-z0-9-]+)`)
	bldgRe    = regexp.MustCompile(`(?i)\bBLDG\s+([A-Za-z0-9-]+)`)
)

// FetchListings queries the parcel layer and projects each feature
// into a Listing, deduplicating by schedule number. Features without a
// schedule number are dropped.
func (c *Client) FetchListings(ctx context.Context, layerURL string, q Query) ([]model.Listing, error) {
	features, err := c.QueryFeatures(ctx, layerURL, q)
	if err != nil {
		return nil, err
	}
	listings := ListingsFromFeatures(features)

	zap.L().Info("listings projected",
		zap.String("component", "arcgis_listings"),
		zap.Int("features", len(features)),
		zap.Int("listings", len(listings)),
	)
	return listings, nil
}

// ListingsFromFeatures converts raw features into Listings, keeping
// the first feature seen per schedule number.
func ListingsFromFeatures(features []Feature) []model.Listing {
	now := time.Now().UTC()
	seen := map[string]bool{}
	var listings []model.Listing

	for _, f := range features {
		schedule := strings.ToUpper(f.String(fieldSchedule))
		if schedule == "" || seen[schedule] {
			continue
		}
		seen[schedule] = true

		line1, line2 := splitMailingAddress(f.String(fieldMailing))
		physical := f.String(fieldSitus)
		if physical == "" {
			physical = f.String(fieldDescription)
		}

		listings = append(listings, model.Listing{
			ScheduleNumber:  schedule,
			OwnerName:       f.String(fieldOwner),
			MailingLine1:    line1,
			MailingLine2:    line2,
			PhysicalAddress: physical,
			Unit:            extractUnit(f.String(fieldDescription), physical),
			Subdivision:     f.String(fieldSubdivision),
			Registration:    f.String(fieldRegistration),
			DetailURL:       detailURLPrefix + schedule,
			SyncedAt:        now,
		})
	}
	return listings
}

// splitMailingAddress breaks an owner mailing blob into the first two
// lines. The layer delivers addresses joined by newlines or <br> tags.
func splitMailingAddress(raw string) (line1, line2 string) {
	raw = brTagRe.ReplaceAllString(raw, "\n")
	raw = htmlTagRe.ReplaceAllString(raw, " ")

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > 0 {
		line1 = lines[0]
	}
	// The final line is city/state/zip, not a unit designator.
	if len(lines) > 2 {
		line2 = lines[1]
	}
	return line1, line2
}

// extractUnit pulls a unit token out of the property description or
// situs text, preferring UNIT phrases over BLDG phrases.
func extractUnit(texts ...string) string {
	for _, t := range texts {
		if m := unitRe.FindStringSubmatch(t); m != nil {
			return m[1]
		}
	}
	for _, t := range texts {
		if m := bldgRe.FindStringSubmatch(t); m != nil {
			return m[1]
		}
	}
	return ""
}
