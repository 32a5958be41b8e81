// Command seed prepares a store: it creates the catalog tournaments or an admin account.
//
//	seed tournaments
//	seed admin --username root --password secret123 [--email a@b.c] [--role super_admin]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/slot-arena/config"
	"github.com/Dosada05/slot-arena/db"
	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
	"github.com/spf13/pflag"
)

const usage = `usage:
  seed tournaments
  seed admin --username NAME --password PASS [--email EMAIL] [--role admin|super_admin] [--permission P ...]`

type adminOptions struct {
	Username    string
	Password    string
	Email       string
	Role        string
	Permissions []string
}

func (o *adminOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Username, "username", "", "Admin username")
	fs.StringVar(&o.Password, "password", "", "Admin password (at least 8 characters)")
	fs.StringVar(&o.Email, "email", "", "Admin email")
	fs.StringVar(&o.Role, "role", string(models.RoleAdmin), "Admin role: admin or super_admin")
	fs.StringSliceVar(&o.Permissions, "permission", nil, "Additional permission (can be specified multiple times)")
}

func (o *adminOptions) Input() (services.CreateAdminInput, error) {
	if o.Username == "" || o.Password == "" {
		return services.CreateAdminInput{}, errors.New("--username and --password are required")
	}
	input := services.CreateAdminInput{
		Username: o.Username,
		Password: o.Password,
		Role:     models.AdminRole(o.Role),
	}
	if o.Email != "" {
		input.Email = &o.Email
	}
	for _, p := range o.Permissions {
		perm, ok := models.ParsePermission(p)
		if !ok {
			return services.CreateAdminInput{}, fmt.Errorf("unknown permission %q", p)
		}
		input.Permissions = append(input.Permissions, perm)
	}
	return input, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], logger); err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(command string, args []string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var opts adminOptions
	if command == "admin" {
		fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
		opts.AddFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
	} else if command != "tournaments" {
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}
	store, closeStore, err := db.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	switch command {
	case "tournaments":
		tournaments := services.NewTournamentService(store, nil, logger)
		created, err := tournaments.InitializeAll(ctx)
		if err != nil {
			return err
		}
		for _, slot := range created {
			logger.Info("tournament created", slog.String("key", slot.Key().String()), slog.Int("max_slots", slot.MaxSlots))
		}
		logger.Info("tournaments seeded", slog.Int("created", len(created)))

	case "admin":
		input, err := opts.Input()
		if err != nil {
			return err
		}
		admin, err := services.NewAuthService(store, logger).CreateAdmin(ctx, input)
		if err != nil {
			return err
		}
		logger.Info("admin created", slog.String("id", admin.ID), slog.String("username", admin.Username), slog.String("role", string(admin.Role)))
	}
	return nil
}
