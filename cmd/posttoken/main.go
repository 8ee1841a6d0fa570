// Command posttoken mints a bearer token for the posts API, signed with
// the server's JWT_SECRET. It stands in for the identity provider during
// local development.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/BorisDmv/posts-api/internal/auth"
	"github.com/BorisDmv/posts-api/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var userID int64
	var unverified bool
	var ttl time.Duration

	flagSet := pflag.NewFlagSet("posttoken", pflag.ContinueOnError)
	flagSet.Int64Var(&userID, "user-id", 0, "id of the user the token authenticates")
	flagSet.BoolVar(&unverified, "unverified", false, "mint a token for a user whose email is not verified")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if userID <= 0 {
		return fmt.Errorf("--user-id must be a positive integer")
	}

	secret, err := config.JWTSecretFromEnv()
	if err != nil {
		return err
	}

	token, err := auth.NewTokens([]byte(secret)).WithTTL(ttl).Issue(userID, !unverified)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
