// gen-jwt prints a signed bearer token for manual testing:
//
//	JWT_SECRET=... go run ./scripts/gen-jwt <user-id> <email>
package main

import (
	"fmt"
	"os"
	"time"

	"taskman/internal/token"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}
	userID := "test-user"
	email := "test@example.com"
	if len(os.Args) > 1 {
		userID = os.Args[1]
	}
	if len(os.Args) > 2 {
		email = os.Args[2]
	}

	signed, err := token.Issue(userID, email, []byte(secret), 7*24*time.Hour)
	if err != nil {
		panic(err)
	}

	fmt.Println(signed)
}
