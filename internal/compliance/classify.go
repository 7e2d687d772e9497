package compliance

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tier is the compliance severity of a regulatory document's expiration.
type Tier string

const (
	TierOK       Tier = "ok"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
	TierExpired  Tier = "expired"
)

// Display colors reused by every surface that renders a tier.
const (
	ColorRed   = "#EF4444"
	ColorAmber = "#F59E0B"
	ColorGreen = "#10B981"
)

// NotRegisteredDays is the sentinel day-count for a missing or unparseable
// expiration. Missing documentation is classified the same as a known-expired
// one; callers relying on the distinction must check the label.
const NotRegisteredDays = -999

const dayMillis = 86400000

// DocStatus is the classification of one expiration input.
type DocStatus struct {
	Tier          Tier   `json:"tier"`
	DaysRemaining int    `json:"days_remaining"`
	Label         string `json:"label"`
	Color         string `json:"color"`
	FormattedDate string `json:"formatted_date,omitempty"` // dd/mm/yyyy, empty when unregistered
}

// EpochSeconds is the stored shape of a date written as an epoch-seconds
// object by older producers.
type EpochSeconds struct {
	Seconds int64 `bson:"seconds" json:"seconds"`
}

// Classify maps an expiration input to its compliance tier relative to now.
//
// The input may be a native time, an epoch-seconds object, a parseable date
// string or anything exposing a Time() accessor. Any other shape, or a value
// that fails to parse, yields the not-registered sentinel. The function is
// pure: identical input and reference instant always produce identical
// output.
func Classify(input any, now time.Time) DocStatus {
	exp, ok := parseInstant(input)
	if !ok {
		return DocStatus{
			Tier:          TierExpired,
			DaysRemaining: NotRegisteredDays,
			Label:         "NO REGISTRADO",
			Color:         ColorRed,
		}
	}

	// Ceiling on milliseconds: a deadline later today counts as one day
	// remaining, matching the established display behavior.
	ms := exp.Sub(now).Milliseconds()
	days := int(math.Ceil(float64(ms) / float64(dayMillis)))
	formatted := exp.Format("02/01/2006")

	switch {
	case days < 0:
		return DocStatus{TierExpired, days, "VENCIDO", ColorRed, formatted}
	case days <= 7:
		return DocStatus{TierCritical, days, "CRÍTICO", ColorRed, formatted}
	case days <= 30:
		return DocStatus{TierWarning, days, "PRONTO A VENCER", ColorAmber, formatted}
	default:
		return DocStatus{TierOK, days, "VIGENTE", ColorGreen, formatted}
	}
}

// parseInstant normalizes every date shape known to exist in stored
// documents. It is the single entry point for date-like values crossing into
// the domain.
func parseInstant(input any) (time.Time, bool) {
	switch v := input.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case EpochSeconds:
		return time.Unix(v.Seconds, 0), true
	case *EpochSeconds:
		if v == nil {
			return time.Time{}, false
		}
		return time.Unix(v.Seconds, 0), true
	case interface{ Time() time.Time }:
		// Covers bson primitive.DateTime and similar wrappers.
		t := v.Time()
		return t, !t.IsZero()
	case int64:
		return time.Unix(v, 0), true
	case int32:
		// bson decodes small numeric fields as int32.
		return time.Unix(int64(v), 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	case map[string]any:
		if sec, ok := numericField(v, "seconds"); ok {
			return time.Unix(sec, 0), true
		}
		return time.Time{}, false
	case primitive.M:
		// bson decodes embedded documents into its own map type, which a
		// map[string]any case does not match.
		if sec, ok := numericField(map[string]any(v), "seconds"); ok {
			return time.Unix(sec, 0), true
		}
		return time.Time{}, false
	case primitive.D:
		for _, e := range v {
			if e.Key != "seconds" {
				continue
			}
			if sec, ok := numericValue(e.Value); ok {
				return time.Unix(sec, 0), true
			}
		}
		return time.Time{}, false
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, false
	}
}

func numericField(m map[string]any, key string) (int64, bool) {
	return numericValue(m[key])
}

func numericValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Layouts seen in stored string dates, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

func parseDateString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
