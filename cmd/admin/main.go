// Command admin manages administrator accounts directly against the
// database: it creates a new admin user or promotes an existing one.
// Role changes are deliberately not exposed over HTTP.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"pawpath/internal/server/config"
	"pawpath/internal/server/models"
	"pawpath/internal/server/repositories/repomanager"
	"pawpath/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	var (
		dsn     string
		name    string
		email   string
		login   string
		promote bool
	)

	defaults := &config.Config{}
	defaults.LoadDefaults()

	flag.StringVar(&dsn, "d", defaults.DatabaseDSN, "database DSN")
	flag.StringVar(&name, "n", "", "display name (create only)")
	flag.StringVar(&email, "e", "", "email (create only)")
	flag.StringVar(&login, "l", "", "login handle")
	flag.BoolVar(&promote, "promote", false, "promote an existing user instead of creating one")
	flag.Parse()

	if login == "" {
		log.Fatal("login is required (-l)")
	}

	ctx := context.Background()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		log.Fatalf("repository init error: %v", err)
	}

	us := services.NewUserService(db, rm, defaults.TOTPIssuer)

	if promote {
		if err := us.Promote(ctx, login); err != nil {
			log.Fatalf("promote error: %v", err)
		}
		fmt.Printf("user %q promoted to admin\n", login)
		return
	}

	if name == "" || email == "" {
		log.Fatal("name (-n) and email (-e) are required to create an admin")
	}

	password, err := getPassword()
	if err != nil {
		log.Fatalf("password input error: %v", err)
	}

	user, err := us.Register(ctx, name, email, login, string(password), "", "")
	if err != nil {
		log.Fatalf("create error: %v", err)
	}

	if err := us.Promote(ctx, login); err != nil {
		log.Fatalf("promote error: %v", err)
	}

	fmt.Printf("admin %q created with id %d (role %s)\n", login, user.ID, models.RoleAdmin)
}

// getPassword reads the new admin's password from the terminal without echo.
func getPassword() ([]byte, error) {
	fmt.Print("Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return pw, nil
}
