package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/config"
	"github.com/shashiranjanraj/stockroom/internal/kernel"
	"github.com/shashiranjanraj/stockroom/pkg/storage"
)

var reportFlags struct {
	as       string
	search   string
	category string
	date     string
}

// stockroom report:orders: export the ledger to the storage disk as CSV.
var reportOrdersCmd = &cobra.Command{
	Use:   "report:orders",
	Short: "Export orders as CSV to the configured storage disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			ctx := cmd.Context()

			user, err := repositories.NewUserRepository(db).FindByEmail(ctx, reportFlags.as)
			if err != nil {
				return fmt.Errorf("report:orders: look up %q: %w", reportFlags.as, err)
			}

			disk, err := storage.FromConfig(ctx)
			if err != nil {
				return err
			}

			svc := kernel.NewServices(db, nil, disk)
			export, err := svc.Reports.ExportOrders(ctx, services.OrderQuery{
				Search:   reportFlags.search,
				Category: reportFlags.category,
				Date:     reportFlags.date,
			}, services.Identity{UserID: user.ID, Role: user.Role})
			if err != nil {
				return err
			}

			fmt.Printf("Exported %d orders to %s (%s)\n", export.Rows, export.Path, export.Disk)
			if export.URL != "" {
				fmt.Println(export.URL)
			}
			return nil
		})
	},
}

var userFlags struct {
	name     string
	email    string
	password string
	role     string
}

// stockroom user:create: register an account without going through the API.
var userCreateCmd = &cobra.Command{
	Use:   "user:create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			auth := services.NewAuthService(repositories.NewUserRepository(db))
			user, err := auth.Register(cmd.Context(), services.UserInput{
				Name:     userFlags.name,
				Email:    userFlags.email,
				Password: userFlags.password,
				Role:     userFlags.role,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		})
	},
}

func init() {
	f := reportOrdersCmd.Flags()
	f.StringVar(&reportFlags.as, "as", config.SeedAdminEmail(), "email of the admin account the export runs as")
	f.StringVar(&reportFlags.search, "search", "", "product name substring")
	f.StringVar(&reportFlags.category, "category", "", "exact category")
	f.StringVar(&reportFlags.date, "date", "", "calendar day, YYYY-MM-DD")

	u := userCreateCmd.Flags()
	u.StringVar(&userFlags.name, "name", "", "display name")
	u.StringVar(&userFlags.email, "email", "", "login email")
	u.StringVar(&userFlags.password, "password", "", "initial password")
	u.StringVar(&userFlags.role, "role", "customer", "admin or customer")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	_ = userCreateCmd.MarkFlagRequired("name")
}
