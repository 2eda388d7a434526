package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sbs-go/internal/app"
	"sbs-go/internal/config"
	"sbs-go/internal/encryption"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			userID = uuid.New().String()
		}

		cfg := config.NewConfig(userID, defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("User ID:  %s\n", userID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		fmt.Println("Run 'sbs key init' to create the encryption keys.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		timeout, err := cfg.Processing.TimeoutDuration()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("User ID:        %s\n", cfg.UserID)
		fmt.Printf("Base Dir:       %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		fmt.Printf("Database:       %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Files:          %s %s%s\n", cfg.Files.Type, cfg.Files.FSRoot, cfg.Files.S3Bucket)
		fmt.Printf("Encryption:     %s\n", cfg.Encryption.Type)
		fmt.Printf("Workers:        %d (queue %d, timeout %s)\n",
			cfg.Processing.WorkerCount(), cfg.Processing.QueueSize(), timeout)
		fmt.Printf("Min confidence: %.2f\n", cfg.Memory.Threshold())
		return nil
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage encryption keys",
}

var keyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the age key pair that encrypts stored originals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Encryption.Type != "" && cfg.Encryption.Type != "age" {
			return fmt.Errorf("encryption type is %q, keys are only used with age", cfg.Encryption.Type)
		}

		enc := encryption.NewAgeEncryptor(cfg.Encryption)
		if err := enc.Setup(); err != nil {
			return fmt.Errorf("creating keys: %w", err)
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s (keep it safe, originals cannot be read without it)\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "DBStatus", func(a *app.SBSApp) error {
			st, path, err := a.DBStatus()
			if err != nil {
				return err
			}
			state := "up to date"
			if !st.UpToDate() {
				state = "needs migration"
			}
			if st.Dirty {
				state = "dirty"
			}
			fmt.Printf("Database: %s\n", path)
			fmt.Printf("Schema:   %d of %d (%s)\n", st.Current, st.Latest, state)
			return nil
		})
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	keyCmd.AddCommand(keyInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
}
