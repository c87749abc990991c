// Command adduser creates an account from the command line, bypassing the
// HTTP registration endpoint. Useful for bootstrapping a fresh install.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"expensio/internal/common"
	"expensio/internal/server/config"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/repomanager"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "email address")
	password := flag.String("password", "", "password (prompted if omitted)")
	dsn := flag.String("d", "", "database dsn (defaults to server config)")
	flag.Parse()

	if *name == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *name, *email, *password, *dsn); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, name, email, password, dsn string) error {
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		password = string(raw)
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	if dsn == "" {
		dsn = config.LoadConfig().DatabaseDSN
	}

	db, err := repomanager.OpenDB(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return err
	}

	repo := m.Users(db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("user %s already exists", email)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := repo.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return err
	}

	fmt.Printf("created user %s (%s)\n", user.Email, user.ID)
	return nil
}
