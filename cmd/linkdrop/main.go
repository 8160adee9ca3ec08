package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/linkdrop/internal/app"
)

func main() {
	// Best effort: a missing .env just means the environment is already set.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ linkdrop failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ linkdrop failed: %v", err)
	}
}
