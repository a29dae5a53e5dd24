// Command accountctl activates or deactivates an account by email.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mundotea/mundotea-backend/internal/app"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

func main() {
	var email string
	var activate, deactivate bool
	flag.StringVar(&email, "email", "", "account email")
	flag.BoolVar(&activate, "activate", false, "reactivate the account")
	flag.BoolVar(&deactivate, "deactivate", false, "deactivate the account")
	flag.Parse()

	email = strings.TrimSpace(email)
	if email == "" || activate == deactivate {
		fmt.Fprintln(os.Stderr, "usage: accountctl -email <email> (-activate | -deactivate)")
		os.Exit(2)
	}

	_ = godotenv.Load()
	log, err := logger.New("production")
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	application, err := app.New(ctx, log)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Services.Auth.SetActive(ctx, email, activate); err != nil {
		fmt.Printf("set active: %v\n", err)
		application.Close()
		os.Exit(1)
	}
	state := "deactivated"
	if activate {
		state = "activated"
	}
	fmt.Printf("account %s %s\n", email, state)
}
