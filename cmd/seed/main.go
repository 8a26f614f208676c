package main

import (
	"fmt"
	"os"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Database maintenance for the pet shop backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		config.AppConfig = cfg
		logger.Init(cfg.LogLevel, true)
		return database.InitDatabase()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		database.CloseDatabase()
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.AutoMigrate(database.DB); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var seedFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load categories, products and pincodes from a YAML fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer f.Close()

		fixture, err := ParseCatalog(f)
		if err != nil {
			return err
		}
		summary, err := ApplyCatalog(database.DB, fixture)
		if err != nil {
			return err
		}
		log.Info().Int("categories", summary.Categories).Int("products", summary.Products).
			Int("pincodes", summary.Pincodes).Str("file", seedFile).Msg("catalog seeded")
		return nil
	},
}

var (
	adminEmail    string
	adminName     string
	adminPassword string
	adminRole     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a back-office account, or reset its password if it exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, created, err := EnsureStaffUser(database.DB, adminEmail, adminName, adminPassword, adminRole)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", *user.Email).Str("role", string(user.Role)).Msg("account created")
		} else {
			log.Info().Str("email", *user.Email).Msg("account already existed, password and role updated")
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&seedFile, "file", "f", "cmd/seed/testdata/catalog.yaml", "YAML fixture to load")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "account email")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Store Admin", "display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "initial password")
	createAdminCmd.Flags().StringVar(&adminRole, "role", "ADMIN", "ADMIN or SUPPORT")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd, catalogCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
