package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Prints a bcrypt hash, or with -email an INSERT seeding a ColisApp user.
func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	email := flag.String("email", "", "emit an INSERT for this user instead of the bare hash")
	name := flag.String("name", "Administrateur", "user display name")
	role := flag.String("role", "ADMIN", "user role (ADMIN or CLIENT)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: hash-password [-cost n] [-email addr -name n -role r] <password>")
	}
	if *role != "ADMIN" && *role != "CLIENT" {
		log.Fatalf("unknown role %q", *role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(flag.Arg(0)), *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if *email == "" {
		fmt.Println(string(hashedPassword))
		return
	}
	fmt.Printf("INSERT INTO users (email, name, role, password_hash) VALUES ('%s', '%s', '%s', '%s');\n",
		quote(*email), quote(*name), *role, hashedPassword)
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
