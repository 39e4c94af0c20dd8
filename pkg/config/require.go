package config

import (
	"log"
	"os"
)

// MustEnv returns the variable or stops the process when it is unset.
func MustEnv(envName string) string {
	v := os.Getenv(envName)
	MustNonEmpty(v, envName)
	return v
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
