// One-off: go run scripts/genhash.go <email> <password>
// Prints an INSERT for seeding a user with a freshly hashed password.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email, password := "admin@example.com", "admin"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("INSERT INTO users (email, hashed_password, is_active) VALUES ('%s', '%s', TRUE);\n", email, string(h))
}
