// Command keygen prints a fresh base64-encoded master key for the
// SECRETS_ENCRYPTION_KEY environment variable.
package main

import (
	"fmt"
	"log"

	"github.com/entauth/identitykit/pkg/secrets"
)

func main() {
	encodedKey, err := secrets.GenerateEncodedKey()
	if err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}

	fmt.Printf("Generated encryption key (for SECRETS_ENCRYPTION_KEY env var): \n———\n%s\n———\n", encodedKey)
}
