package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgAuth "github.com/phoolcraft/phool-backend/pkg/auth"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/security"
)

// admin-token mints dashboard tokens for scripts and staff accounts, and
// produces the PHOOL_ADMIN_PASSWORD_HASH value from a password read on stdin.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-token"})

	_ = godotenv.Load()

	hash := flag.Bool("hash", false, "read a password from stdin and print its argon2id hash")
	role := flag.String("role", enums.AdminRoleStaff.String(), "token role: admin|staff")
	subject := flag.String("subject", "", "token subject, defaults to PHOOL_ADMIN_EMAIL")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	if *hash {
		password, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && password == "" {
			requireResource(ctx, logg, "password input", err)
		}
		encoded, err := security.HashPassword(strings.TrimRight(password, "\r\n"), cfg.Password)
		requireResource(ctx, logg, "password hash", err)
		fmt.Println(encoded)
		return
	}

	parsed, err := enums.ParseAdminRole(*role)
	requireResource(ctx, logg, "role", err)

	sub := strings.TrimSpace(*subject)
	if sub == "" {
		sub = cfg.Admin.Email
	}
	if sub == "" {
		fmt.Fprintln(os.Stderr, "missing -subject and PHOOL_ADMIN_EMAIL is unset")
		os.Exit(1)
	}

	now := time.Now()
	token, err := pkgAuth.MintAdminToken(cfg.JWT, now, pkgAuth.AdminTokenPayload{Subject: sub, Role: parsed})
	requireResource(ctx, logg, "token", err)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"role":       parsed.String(),
		"expires_at": now.Add(cfg.JWT.TTL()).Format(time.RFC3339),
	}), "admin token minted")
	fmt.Println(token)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
