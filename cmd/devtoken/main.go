// Command devtoken mints bearer tokens accepted by the API in AUTH_MODE=jwt.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dtroode/vision-analyzer/internal/token"
)

func main() {
	_ = godotenv.Load()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		secret = "devsecret"
	}

	subject := flag.String("sub", "dev-user", "user ID to put in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.StringVar(&secret, "secret", secret, "HMAC secret, defaults to AUTH_JWT_SECRET")
	flag.Parse()

	tok, err := token.NewJWT(secret).WithTTL(*ttl).GenerateAccessToken(*subject)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(tok)
}
