package gatekeeper

import "net/url"

const LogMaskVal = "xxxxxx"

// Mask replaces every value for key in vals with LogMaskVal.
// Multiple values squash into one.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals.Set(key, LogMaskVal)
}
