package arcgis

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/model"
)

// RosterSource describes how to query one municipality's license
// roster layer: which fields carry the schedule number, license id,
// status, and dates.
type RosterSource struct {
	Municipality    string `mapstructure:"municipality" yaml:"municipality"`
	LayerURL        string `mapstructure:"layer_url" yaml:"layer_url"`
	ScheduleField   string `mapstructure:"schedule_field" yaml:"schedule_field"`
	LicenseIDField  string `mapstructure:"license_id_field" yaml:"license_id_field"`
	StatusField     string `mapstructure:"status_field" yaml:"status_field"`
	ExpirationField string `mapstructure:"expiration_field" yaml:"expiration_field"`
	UpdatedField    string `mapstructure:"updated_field" yaml:"updated_field"`
	Where           string `mapstructure:"where" yaml:"where"`
}

// DefaultRosterSources covers the four Summit County towns that
// publish license rosters. Config may override or extend these.
func DefaultRosterSources() []RosterSource {
	return []RosterSource{
		{
			Municipality:    "Breckenridge",
			LayerURL:        "https://services1.arcgis.com/DbqCQ5IIGIgjLU4g/arcgis/rest/services/STR_Licenses_Public/FeatureServer/0",
			ScheduleField:   "SCHEDULE_NUM",
			LicenseIDField:  "LICENSE_NO",
			StatusField:     "STATUS",
			ExpirationField: "EXPIRATION",
			UpdatedField:    "LAST_UPDATE",
		},
		{
			Municipality:    "Frisco",
			LayerURL:        "https://services7.arcgis.com/r0nAYG7DmzNoKGbT/arcgis/rest/services/Frisco_STR_Licenses/FeatureServer/0",
			ScheduleField:   "SCHEDULE",
			LicenseIDField:  "LICENSE_NO",
			StatusField:     "STATUS",
			ExpirationField: "EXPIRATION",
			UpdatedField:    "LASTUPDATED",
		},
		{
			Municipality:    "Dillon",
			LayerURL:        "https://services7.arcgis.com/4W0wSZ3KFcuX39pB/arcgis/rest/services/Dillon_STR_Licenses/FeatureServer/0",
			ScheduleField:   "SCHEDULE",
			LicenseIDField:  "LICENSE_NO",
			StatusField:     "STATUS",
			ExpirationField: "EXPIRATION",
			UpdatedField:    "LAST_UPDATED",
		},
		{
			Municipality:    "Silverthorne",
			LayerURL:        "https://services7.arcgis.com/p0mEetxHUAZJr0qG/arcgis/rest/services/Silverthorne_STR_Licenses/FeatureServer/0",
			ScheduleField:   "SCHEDULE",
			LicenseIDField:  "LICENSE_NO",
			StatusField:     "STATUS",
			ExpirationField: "EXPIRATION",
			UpdatedField:    "LAST_MODIFIED",
		},
	}
}

// statusAliases maps substrings of raw status text to a normalized
// vocabulary. Order within a status family does not matter; the first
// alias found in the text wins.
var statusAliases = []struct {
	needle string
	alias  string
}{
	{"APPROVED", "active"},
	{"ACTIVE", "active"},
	{"ISSUED", "active"},
	{"CURRENT", "active"},
	{"GOOD STANDING", "active"},
	{"RENEWED", "active"},
	{"PAID", "active"},
	{"PENDING", "pending"},
	{"UNDER REVIEW", "pending"},
	{"IN PROCESS", "pending"},
	{"EXPIRED", "expired"},
	{"INACTIVE", "inactive"},
	{"SUSPENDED", "inactive"},
	{"REVOKED", "revoked"},
	{"DENIED", "revoked"},
	{"CANCELLED", "revoked"},
	{"CANCELED", "revoked"},
}

// NormalizeStatus folds free-text license status into a small fixed
// vocabulary so rosters from different towns can be compared.
func NormalizeStatus(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return "unknown"
	}
	for _, a := range statusAliases {
		if strings.Contains(upper, a.needle) {
			return a.alias
		}
	}
	return "unknown"
}

// FetchRoster downloads and normalizes one municipality's roster.
// Rows without a schedule number or license id are dropped.
func (c *Client) FetchRoster(ctx context.Context, src RosterSource) ([]model.MunicipalLicense, error) {
	features, err := c.QueryFeatures(ctx, src.LayerURL, Query{Where: src.Where})
	if err != nil {
		return nil, err
	}

	var records []model.MunicipalLicense
	for _, f := range features {
		schedule := strings.ToUpper(f.String(src.ScheduleField))
		licenseID := f.String(src.LicenseIDField)
		if schedule == "" || licenseID == "" {
			continue
		}

		status := f.String(src.StatusField)
		if status == "" {
			status = "Unknown"
		}

		records = append(records, model.MunicipalLicense{
			Municipality:     src.Municipality,
			ScheduleNumber:   schedule,
			LicenseID:        licenseID,
			Status:           status,
			NormalizedStatus: NormalizeStatus(status),
			ExpirationDate:   parseRosterDate(f.Attributes[src.ExpirationField]),
			UpdatedAt:        parseRosterDate(f.Attributes[src.UpdatedField]),
		})
	}

	zap.L().Info("municipal roster fetched",
		zap.String("component", "arcgis_roster"),
		zap.String("municipality", src.Municipality),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// parseRosterDate tolerates the date shapes the town layers actually
// deliver: epoch milliseconds, epoch seconds, ISO dates, and US dates.
func parseRosterDate(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t > 1e12 {
			return time.UnixMilli(int64(t)).UTC().Format("2006-01-02")
		}
		if t > 1e9 {
			return time.Unix(int64(t), 0).UTC().Format("2006-01-02")
		}
		return ""
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02", "1/2/2006", "01/02/2006", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format("2006-01-02")
			}
		}
		return ""
	default:
		return ""
	}
}
