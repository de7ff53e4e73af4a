package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/auth"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample accounts",
	Long:  `Seed the database with one admin and one student account for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		app, err := NewApp(ctx, cfg, logger.LoggerWrapper())
		if err != nil {
			return err
		}
		defer app.Close()

		return seedAccounts(ctx, app.Auth, seedPassword)
	},
}

var seedAccountsList = []auth.RegisterDTO{
	{Name: "Campus Admin", Email: "admin@campus.edu", Role: "admin"},
	{Name: "Sample Student", Email: "student@campus.edu", Role: "student"},
}

type registrar interface {
	Register(ctx context.Context, dto auth.RegisterDTO) (*auth.AuthResult, error)
}

// seedAccounts registers the sample accounts, skipping ones that exist.
func seedAccounts(ctx context.Context, svc registrar, password string) error {
	for _, dto := range seedAccountsList {
		dto.Password = password
		res, err := svc.Register(ctx, dto)
		if errors.Is(err, internal.ErrEmailTaken) {
			fmt.Println("account already exists:", dto.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", dto.Email, err)
		}
		fmt.Printf("Seeded %s account: %s (%s)\n", res.User.Role, res.User.Email, res.User.ID)
	}
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "password for the seeded accounts")
}
