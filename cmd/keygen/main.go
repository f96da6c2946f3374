package main

import (
	"fmt"
	"log"

	"github.com/chainpe/payvalidator/pkg/auth"
)

func main() {
	kp, err := auth.GenerateKeypair()
	if err != nil {
		log.Fatalf("Failed to generate keypair: %v", err)
	}

	fmt.Printf("Backend principal (for BACKEND_PRINCIPAL env var): \n———\n%s\n———\n", kp.Principal())
	fmt.Printf("Signing seed (keep secret, used by the backend to sign requests): \n———\n%s\n———\n", kp.Seed())
}
