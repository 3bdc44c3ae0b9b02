package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/integrity"
	integritypg "github.com/hrlink/people-sync/internal/integrity/postgres"
	"github.com/hrlink/people-sync/pkg/logger"
)

var (
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Scan contracts and employee records for integrity issues",
		Long:  `Scan contracts and employee records for cross-entity inconsistencies, optionally applying the mechanical fixes.`,
		RunE:  runValidate,
	}
	validateCompanyID int64
	validateFix       bool
	validateDryRun    bool
)

func init() {
	validateCmd.Flags().Int64Var(&validateCompanyID, "company", 0, "Limit the scan to one company (0 scans everything)")
	validateCmd.Flags().BoolVar(&validateFix, "fix", false, "Apply the auto-fixable repairs")
	validateCmd.Flags().BoolVar(&validateDryRun, "dry-run", false, "With --fix, report what would be repaired without writing")
}

func runValidate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	appLogger := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialize orm: %w", err)
	}

	service := integrity.NewService(integritypg.NewIntegrityRepository(gormDB), appLogger)
	ctx := context.Background()

	if validateFix {
		result, err := service.AutoFix(ctx, validateCompanyID, validateDryRun)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	issues, err := service.ValidateAll(ctx, validateCompanyID)
	if err != nil {
		return err
	}
	summary, err := service.GetSummary(ctx, validateCompanyID)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"issues":  issues,
		"summary": summary,
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
