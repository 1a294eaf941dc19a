// utils/timeutil.go
package utils

import "time"

// India time location (IST, +05:30)
var istLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+1800)
}()

// Convert an epoch value in **seconds** to IST.
// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsIST(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(istLoc)
}

func FormatDisplayIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format("2006-01-02 15:04:05 -0700 MST")
}
