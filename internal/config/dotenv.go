package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files next to the binary, most specific first:
// .env.<APP_ENV>.local > .env.local > .env. godotenv.Load never
// overwrites already-set variables, so OS env vars always win and
// earlier files win over later ones. Returns the files actually found.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	if env := os.Getenv("APP_ENV"); env != "" {
		candidates = append([]string{fmt.Sprintf(".env.%s.local", env)}, candidates...)
	}

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
