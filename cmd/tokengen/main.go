// Command tokengen prints a signed access token for the theater API.
// User accounts live outside this service, so operators and test
// clients mint tokens with the shared JWT_SECRET:
//
//	tokengen -user 42 -role ADMIN -ttl 2h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-booking/internal/middleware"
	"github.com/iliyamo/theater-booking/internal/utils"
)

func main() {
	userID := flag.Uint64("user", 0, "user id placed in the sub claim")
	role := flag.String("role", middleware.RoleUser, "role claim (USER or ADMIN)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logrus.Fatal("JWT_SECRET is not set")
	}
	if *role != middleware.RoleUser && *role != middleware.RoleAdmin {
		logrus.Fatalf("unknown role %q", *role)
	}

	tok, err := utils.NewAccessToken(secret, *userID, *role, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("sign token")
	}
	fmt.Println(tok.Token)
}
