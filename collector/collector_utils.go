package collector

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
	Logger "github.com/sociolens/sociolens/utils/log"
)

// ParsePlatformTime parses a platform-native timestamp string into UTC.
// Platforms are inconsistent about formats (RFC3339 with and without
// sub-second precision, sometimes legacy formats), dateparse absorbs that.
// Returns nil when the value cannot be parsed, a missing creation time is
// not an ingestion failure.
func ParsePlatformTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		Logger.Log.Warnln("cannot parse platform timestamp: ", value)
		return nil
	}
	utc := t.UTC()
	return &utc
}

// PrettyPrint marshals any object into indented json for debug logging.
func PrettyPrint(obj interface{}) string {
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
