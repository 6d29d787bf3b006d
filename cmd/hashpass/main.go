package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/japama/watercontract/internal/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpass <password>")
		os.Exit(1)
	}

	_ = godotenv.Load()

	algorithm := strings.TrimSpace(os.Getenv("PASSWORD_HASH"))
	if algorithm == "" {
		algorithm = auth.AlgorithmBcrypt
	}
	cost, err := strconv.Atoi(strings.TrimSpace(os.Getenv("BCRYPT_COST")))
	if err != nil {
		cost = 10
	}

	hasher, err := auth.NewPasswordHasher(strings.ToLower(algorithm), cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	hash, err := hasher.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
