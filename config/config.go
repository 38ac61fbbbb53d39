package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a local .env into the process environment. Missing file is
// fine in deployments where env vars come from the runtime.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}
}
