package flagx

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvString overwrites *dst with $key when the variable is set.
func EnvString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// EnvInt overwrites *dst with $key parsed as a base-10 integer.
func EnvInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// EnvDuration overwrites *dst with $key parsed by time.ParseDuration.
func EnvDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
