package template

import (
	"fmt"
	"strconv"
	"strings"
)

const initialVersion = "1.0"

// incrementMinor bumps the minor component of a "major.minor" version string.
// A malformed version resets to "1.1" so a bad stored value cannot stall the
// monotonic-version invariant.
func incrementMinor(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return "1.1"
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return "1.1"
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return "1.1"
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}
