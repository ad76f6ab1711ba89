package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseIntParam retrieves an int value from the provided URL query parameters.
// If the key is not present it returns def. An unparseable value returns def
// and records an entry in fieldErrors.
func ParseIntParam(params url.Values, key string, def int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return def, fieldErrors
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return def, fieldErrors
	}
	return n, fieldErrors
}

// ParseBoolParam works like ParseIntParam for values accepted by strconv.ParseBool
func ParseBoolParam(params url.Values, key string, def bool, fieldErrors map[string][]string) (bool, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return def, fieldErrors
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return def, fieldErrors
	}
	return b, fieldErrors
}

// ParseListParam splits a comma separated query parameter. Repeated keys are
// concatenated, entries are sanitized and empty entries dropped.
func ParseListParam(params url.Values, key string) []string {
	var list []string
	for _, raw := range params[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = SanitizeInput(part); part != "" {
				list = append(list, part)
			}
		}
	}
	return list
}
