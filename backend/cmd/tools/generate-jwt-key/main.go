package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
)

func main() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate jwt key: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)

	fmt.Println("=================================================")
	fmt.Println("  JWT Signing Key (HS256)")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Println("Add this to your config/private.yaml:")
	fmt.Printf("jwt_key: \"%s\"\n", encoded)
	fmt.Println()
	fmt.Println("or export it as JWT_KEY. Rotating it signs out every admin.")
	fmt.Println("=================================================")
}
