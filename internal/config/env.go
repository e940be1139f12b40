package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvOrDefault returns the trimmed value of key, or fallback when it is unset or blank.
func EnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// EnvBoolOrDefault reads a boolean switch such as DMS_NO_COLOR.
// Besides strconv.ParseBool forms it accepts yes/no and on/off.
// Unrecognized values yield fallback.
func EnvBoolOrDefault(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return fallback
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return fallback
}
