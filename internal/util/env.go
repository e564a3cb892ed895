package util

import (
	"os"
	"strconv"
)

// GetEnv returns the ENV variable identified by key or defaultVal if unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// GetEnvAsInt returns the ENV variable identified by key parsed as int or
// defaultVal if unset or unparsable.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.Atoi(strVal)
	if err != nil {
		return defaultVal
	}

	return val
}

// GetEnvAsBool returns the ENV variable identified by key parsed as bool or
// defaultVal if unset or unparsable.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.ParseBool(strVal)
	if err != nil {
		return defaultVal
	}

	return val
}
