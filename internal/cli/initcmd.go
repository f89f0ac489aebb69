package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/chase/internal/config"
	"github.com/example/chase/internal/core/commitment"
	"github.com/example/chase/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the chase home directory",
	Long: `Create ~/.chase with the default configuration and database schema.
With --rules, also write the built-in commitment detection rules to an
editable YAML file and point the config at it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		writeRules, _ := cmd.Flags().GetBool("rules")
		force, _ := cmd.Flags().GetBool("force")

		dir, err := config.Dir()
		if err != nil {
			return err
		}

		cfgPath := filepath.Join(dir, "config.json")
		if _, err := os.Stat(cfgPath); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		}

		cfg := config.DefaultConfig()

		if writeRules {
			rulesPath := filepath.Join(dir, "rules.yaml")
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			if err := commitment.WriteDefaultRules(rulesPath); err != nil {
				return fmt.Errorf("failed to write rules: %w", err)
			}
			cfg.RulesPath = rulesPath
			fmt.Printf("✓ Wrote detection rules to %s\n", rulesPath)
		}

		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote config to %s\n", cfgPath)

		// Opening the database creates it and applies the schema.
		if _, err := db.GetDB(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		dbPath, err := db.GetDBPath()
		if err != nil {
			return err
		}
		fmt.Printf("✓ Database ready at %s\n", dbPath)

		return nil
	},
}

func init() {
	initCmd.Flags().Bool("rules", false, "Also write editable commitment rules to ~/.chase/rules.yaml")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
}

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return initCmd
}
