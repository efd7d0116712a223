// Command seed inserts the demo accounts into the database: three regular
// users and one admin, each with a bcrypt password digest and an HS256
// credentials record. With -i it additionally prompts for a password on the
// terminal and creates a custom admin account.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/dbx"
	"github.com/frankly034/userdir/internal/flagx"
	"github.com/frankly034/userdir/internal/server/auth"
	"github.com/frankly034/userdir/internal/server/config"
	"github.com/frankly034/userdir/internal/server/models"
	"github.com/frankly034/userdir/internal/server/repositories/repomanager"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"
)

// demoDigest is bcrypt for the shared demo password.
const demoDigest = "$2a$10$r.dXwAmooxvlXh87FLl7BeVO2iyBZskwhiZCUCcbTBmFT/Mht/X56"

const credentialsHash = "HS256"

type seedUser struct {
	name    string
	email   string
	isAdmin bool
}

var demoUsers = []seedUser{
	{name: "Mama User One", email: "user1@fake-mail.com"},
	{name: "Mama User Two", email: "user2@fake-mail.com"},
	{name: "Mama User", email: "mamaUser@fake-mail.com"},
	{name: "Admin User", email: "admin@fake-mail.com", isAdmin: true},
}

func main() {
	args := flagx.FilterArgs(os.Args[1:], []string{"-i"})
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	interactive := fs.Bool("i", false, "prompt for a custom admin account")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	cfg := config.LoadConfig()

	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	for _, u := range demoUsers {
		if err := seed(ctx, db, repos, u, demoDigest); err != nil {
			log.Fatalf("seeding %s: %v", u.email, err)
		}
	}

	if *interactive {
		if err := seedInteractiveAdmin(ctx, db, repos, cfg); err != nil {
			log.Fatalf("seeding admin: %v", err)
		}
	}
}

// seed inserts one demo account unless a user with that email already exists.
func seed(ctx context.Context, db *sql.DB, repos repomanager.RepositoryManager, u seedUser, digest string) error {
	_, err := repos.Users(db).GetByEmail(ctx, u.email, false)
	if err == nil {
		fmt.Printf("skipping %s: already exists\n", u.email)
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds, err := repos.Credentials(tx).Create(ctx, credentialsHash)
		if err != nil {
			return err
		}

		user := &models.User{
			Name:           u.name,
			Email:          u.email,
			Password:       digest,
			EmailConfirmed: true,
			IsAdmin:        u.isAdmin,
			CredentialsID:  creds.ID,
		}
		created, err := repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}

		fmt.Printf("created %s (id=%s)\n", u.email, created.ID)
		return nil
	})
}

func seedInteractiveAdmin(ctx context.Context, db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Admin name: ")
	name, err := reader.ReadString('\n')
	if err != nil {
		return err
	}

	fmt.Print("Admin email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}

	fmt.Print("Admin password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}

	digest, err := auth.NewHasher(cfg.BcryptCost).Hash(string(password))
	if err != nil {
		return err
	}

	u := seedUser{
		name:    strings.TrimSpace(name),
		email:   strings.TrimSpace(email),
		isAdmin: true,
	}
	if u.email == "" {
		return errors.New("email is required")
	}

	return seed(ctx, db, repos, u, digest)
}
