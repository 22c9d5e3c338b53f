package dailylogs

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPayload encodes a change notification as "<userID>|<date>|<version>".
func FormatPayload(userID, date string, version int64) string {
	return userID + "|" + date + "|" + strconv.FormatInt(version, 10)
}

// ParsePayload is the inverse of FormatPayload.
func ParsePayload(s string) (userID, date string, version int64, err error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("malformed payload %q", s)
	}
	version, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("malformed payload version %q: %w", parts[2], err)
	}
	return parts[0], parts[1], version, nil
}
