package main

import (
	"fmt"
	"log"

	"github.com/coworkhub/coworking-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secret Generator for CoworkHub")
	fmt.Println("===========================================")
	fmt.Println()

	jwtSecret, intentSecret, err := utils.GenerateDeploymentSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", jwtSecret)
	fmt.Printf("INTENT_SIGNING_SECRET=%s\n", intentSecret)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Rotating INTENT_SIGNING_SECRET invalidates checkouts still in flight.")
	fmt.Println("===========================================")
}
