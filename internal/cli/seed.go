package cli

import (
	"context"
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/hash"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

const defaultAdminPassword = "admin123"

type sample struct {
	name, description string
	category          models.Category
	price             string
	quantity          int
}

var samples = []sample{
	{"Chocolate Truffle", "Rich dark chocolate truffle", models.CategoryChocolate, "25.00", 100},
	{"Gulab Jamun", "Traditional Indian sweet in sugar syrup", models.CategoryIndian, "15.00", 50},
	{"Blueberry Cheesecake", "Creamy cheesecake with blueberry topping", models.CategoryCake, "350.00", 10},
	{"Gummy Bears", "Assorted fruit flavored gummy bears", models.CategoryCandy, "10.00", 200},
	{"Chocolate Chip Cookies", "Freshly baked cookies with chocolate chips", models.CategoryCookie, "20.00", 75},
	{"Tiramisu", "Italian coffee-flavored dessert", models.CategoryDessert, "280.00", 8},
	{"Rasgulla", "Soft cottage cheese balls in sugar syrup", models.CategoryIndian, "12.00", 0},
	{"White Chocolate Bar", "Creamy white chocolate bar", models.CategoryChocolate, "40.00", 30},
}

type SeedOptions struct {
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

type SeedReport struct {
	AdminCreated bool
	SweetsAdded  int
}

// Seed creates the superuser when its email is unused and the sample
// catalog when no sweets exist yet. Running it twice changes nothing.
func Seed(ctx context.Context, r *repo.GormRepo, opts SeedOptions) (SeedReport, error) {
	var rep SeedReport

	_, err := r.GetUserByEmail(ctx, opts.AdminEmail)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		pw, err := hash.HashPassword(opts.AdminPassword)
		if err != nil {
			return rep, err
		}
		admin := &models.User{
			Email:        opts.AdminEmail,
			Username:     opts.AdminUsername,
			PasswordHash: pw,
			IsAdmin:      true,
			IsStaff:      true,
			IsSuperuser:  true,
			IsActive:     true,
		}
		if err := r.CreateUser(ctx, admin); err != nil {
			return rep, err
		}
		rep.AdminCreated = true
	case err != nil:
		return rep, err
	}

	count, err := r.CountSweets(ctx)
	if err != nil {
		return rep, err
	}
	if count > 0 {
		return rep, nil
	}
	for _, s := range samples {
		sw := &models.Sweet{
			Name:        s.name,
			Description: s.description,
			Category:    s.category,
			Price:       decimal.RequireFromString(s.price),
			Quantity:    s.quantity,
		}
		if err := r.CreateSweet(ctx, sw); err != nil {
			return rep, err
		}
		rep.SweetsAdded++
	}
	return rep, nil
}

func newSeedCmd(a *app) *cobra.Command {
	opts := SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default superuser and sample sweets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(cmd, a.cfg)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			if opts.AdminPassword == "" {
				opts.AdminPassword = os.Getenv("SEED_ADMIN_PASSWORD")
			}
			if opts.AdminPassword == "" {
				opts.AdminPassword = defaultAdminPassword
				color.Yellow("using the default admin password, change it after the first login")
			}

			rep, err := Seed(cmd.Context(), repo.New(gdb), opts)
			if err != nil {
				color.Red("seed failed: %v", err)
				return err
			}
			if rep.AdminCreated {
				color.Green("admin user %s created", opts.AdminEmail)
			} else {
				color.Cyan("admin user %s already exists", opts.AdminEmail)
			}
			if rep.SweetsAdded > 0 {
				color.Green("created %d sample sweets", rep.SweetsAdded)
			} else {
				color.Cyan("catalog is not empty, sample sweets skipped")
			}
			color.Green("sample data creation complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@example.com", "superuser email")
	cmd.Flags().StringVar(&opts.AdminUsername, "admin-username", "admin", "superuser username")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "", "superuser password (default $SEED_ADMIN_PASSWORD)")
	return cmd
}
