// Package waitlist converts parsed tabular rows into WaitlistEntry
// records, enforcing the per-waitlist uniqueness invariants.
package waitlist

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/summit-housing/waitlist-cli/internal/model"
	"github.com/summit-housing/waitlist-cli/internal/normalize"
)

// Source describes where a batch of rows came from.
type Source struct {
	WaitlistType  string
	WaitlistLabel string
	Filename      string
}

// Header aliases per concept, compared after squashing case,
// whitespace, and punctuation.
var (
	line1Aliases = []string{
		"addressline1", "address1", "addrline1", "addr1",
		"streetaddress", "mailingaddress1", "address",
	}
	line2Aliases = []string{
		"addressline2", "address2", "addrline2", "addr2",
		"unit", "unitnumber", "apt", "suite",
	}
	positionAliases = []string{
		"position", "pos", "waitlistposition", "waitlistnumber", "rank", "number",
	}
)

// columns holds resolved column indexes; -1 means absent.
type columns struct {
	line1    int
	line2    int
	position int
	overflow []int
}

func squashHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if squashHeader(h) == alias {
				return i
			}
		}
	}
	return -1
}

// resolveColumns maps the header row to the address/position concepts.
// Returns an error when no address-line-1 column can be located; that
// is a configuration problem, not a data problem.
func resolveColumns(header []string) (columns, error) {
	cols := columns{
		line1:    findColumn(header, line1Aliases),
		line2:    findColumn(header, line2Aliases),
		position: findColumn(header, positionAliases),
	}
	if cols.line1 < 0 {
		return cols, eris.Errorf("waitlist: no address-line-1 column in header %v", header)
	}
	for i := range header {
		if i != cols.line1 && i != cols.line2 && i != cols.position {
			cols.overflow = append(cols.overflow, i)
		}
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// looksLikeUnit reports whether an unused cell carries overflow unit
// text worth scanning for hints.
func looksLikeUnit(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || len(t) > 24 {
		return false
	}
	lower := strings.ToLower(t)
	for _, d := range []string{"unit", "apt", "suite", "ste ", "bldg", "building", "#"} {
		if strings.Contains(lower, d) {
			return true
		}
	}
	if len(t) <= 8 && strings.ContainsAny(t, "0123456789") {
		return true
	}
	return false
}

// BuildEntries converts rows into entries. Rows with an empty address
// line 1 are skipped with a warning; a repeated position within the
// waitlist keeps the row but demotes position to nil; a repeated
// normalized address drops the row entirely so the same property is
// never double-counted.
func BuildEntries(src Source, header []string, rows [][]string) ([]model.WaitlistEntry, error) {
	log := zap.L().With(
		zap.String("component", "waitlist_builder"),
		zap.String("waitlist_type", src.WaitlistType),
		zap.String("file", src.Filename),
	)

	if len(header) == 0 {
		return nil, eris.Errorf("waitlist: empty header in %s", src.Filename)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	seenPositions := map[int]bool{}
	seenAddresses := map[string]bool{}
	entries := make([]model.WaitlistEntry, 0, len(rows))

	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header row

		line1 := normalize.SanitizeLine(cell(row, cols.line1))
		if line1 == "" {
			log.Warn("skipping row with empty address line 1", zap.Int("row", rowNum))
			continue
		}
		line2 := normalize.SanitizeLine(cell(row, cols.line2))

		entry := buildEntry(src, line1, line2, rowNum)

		for _, oi := range cols.overflow {
			if text := cell(row, oi); looksLikeUnit(text) {
				mergeOverflowUnits(&entry, text)
			}
		}

		if seenAddresses[entry.CombinedKey] {
			log.Warn("dropping duplicate normalized address",
				zap.Int("row", rowNum),
				zap.String("key", entry.CombinedKey),
			)
			continue
		}
		seenAddresses[entry.CombinedKey] = true

		if pos, ok := parsePosition(cell(row, cols.position)); ok {
			if seenPositions[pos] {
				log.Warn("demoting duplicate position to null",
					zap.Int("row", rowNum),
					zap.Int("position", pos),
				)
			} else {
				seenPositions[pos] = true
				entry.Position = &pos
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// buildEntry computes every derived field from the sanitized lines.
func buildEntry(src Source, line1, line2 string, rowNum int) model.WaitlistEntry {
	clean1 := normalize.CleanLine(line1)
	clean2 := normalize.CleanLine(line2)
	stripped1 := normalize.StripUnitDesignators(clean1)

	entry := model.WaitlistEntry{
		ID:            uuid.New().String(),
		WaitlistType:  src.WaitlistType,
		WaitlistLabel: src.WaitlistLabel,
		AddressLine1:  line1,
		AddressLine2:  line2,

		Line1Key:          normalize.AddressKey(clean1),
		Line2Key:          normalize.AddressKey(clean2),
		CombinedKey:       normalize.AddressKey(strings.TrimSpace(clean1 + " " + clean2)),
		Line1StrippedKey:  normalize.AddressKey(stripped1),
		StreetKey:         normalize.StreetKey(clean1),
		StreetStrippedKey: normalize.StreetKey(stripped1),
		StreetSuffix:      normalize.SuffixToken(clean1),
		ComplexHints:      normalize.ComplexTokens(clean2),
		BuildingCodes:     normalize.BuildingCodes(clean1 + " " + clean2),

		SourceFile: src.Filename,
		SourceRow:  rowNum,
	}

	unitSet := map[string]struct{}{}
	normalize.CollectUnitTokens(clean2, unitSet)
	normalize.CollectInlineUnitTokens(clean1, unitSet)
	entry.UnitKeys = sortedKeys(unitSet)
	entry.StreetUnitKeys = streetUnitKeys(entry.StreetStrippedKey, entry.UnitKeys)

	return entry
}

func mergeOverflowUnits(entry *model.WaitlistEntry, text string) {
	unitSet := map[string]struct{}{}
	for _, k := range entry.UnitKeys {
		unitSet[k] = struct{}{}
	}
	normalize.CollectUnitTokens(normalize.CleanLine(text), unitSet)
	entry.UnitKeys = sortedKeys(unitSet)
	entry.StreetUnitKeys = streetUnitKeys(entry.StreetStrippedKey, entry.UnitKeys)
}

func streetUnitKeys(streetKey string, unitKeys []string) []string {
	var keys []string
	for _, u := range unitKeys {
		if k := normalize.StreetUnitKey(streetKey, u); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parsePosition(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 0 {
		return 0, false
	}
	return pos, true
}
