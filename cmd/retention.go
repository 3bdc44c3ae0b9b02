package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/termination"
	terminationpg "github.com/hrlink/people-sync/internal/termination/postgres"
	"github.com/hrlink/people-sync/pkg/logger"
)

// retentionCmd is the out-of-band housekeeping pass: terminating a contract
// only marks eligibility, this command advances archives whose window
// elapsed.
var retentionCmd = &cobra.Command{
	Use:   "retention-sweep",
	Short: "Advance terminated contracts through the retention lifecycle",
	Long:  `Advance due archives one step: pending to archived, archived to deleted with the audit trail purged.`,
	RunE:  runRetentionSweep,
}

func runRetentionSweep(_ *cobra.Command, _ []string) error {
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

	repo := terminationpg.NewTerminationRepository(gormDB)
	service := termination.NewService(repo, cfg.Retention.Days(), nil, appLogger)

	result, err := service.SweepRetention(context.Background(), time.Now())
	if err != nil {
		return err
	}
	return printJSON(result)
}
