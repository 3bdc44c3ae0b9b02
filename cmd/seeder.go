package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	contractmodel "github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"sync_logs", "data_sharing_settings", "contract_archives", "contracts",
				"profile_educations", "profile_careers", "profile_certificates",
				"profile_languages", "profile_military_records", "profile_families",
				"personal_profiles",
				"employee_educations", "employee_careers", "employee_certificates",
				"employee_languages", "employee_military_records", "employee_families",
				"employees", "companies",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			log.Println("cleared existing data")
		}

		company := employee.Company{Name: "Hikari Trading"}
		if err := db.FirstOrCreate(&company, employee.Company{Name: "Hikari Trading"}).Error; err != nil {
			log.Fatalf("failed to seed company: %v", err)
		}

		birthDate := time.Date(1992, 4, 12, 0, 0, 0, 0, time.UTC)
		p := profile.PersonalProfile{
			PersonAccountID: 1001,
			LastName:        "Sato",
			FirstName:       "Yuki",
			LastNameKana:    "サトウ",
			FirstNameKana:   "ユキ",
			BirthDate:       &birthDate,
			Gender:          "female",
			Nationality:     "JP",
			Email:           "yuki.sato@example.com",
			MobilePhone:     "090-1234-5678",
			PostalCode:      "150-0001",
			Prefecture:      "Tokyo",
			City:            "Shibuya",
			StreetAddress:   "1-2-3",
		}
		if err := db.FirstOrCreate(&p, profile.PersonalProfile{PersonAccountID: 1001}).Error; err != nil {
			log.Fatalf("failed to seed profile: %v", err)
		}

		c := contractmodel.Contract{
			PersonAccountID: p.PersonAccountID,
			CompanyID:       company.ID,
			Status:          contractmodel.StatusRequested,
			ContractType:    "full_time",
			Position:        "Engineer",
			Department:      "Platform",
			RequestedBy:     p.PersonAccountID,
		}
		if err := db.FirstOrCreate(&c, contractmodel.Contract{
			PersonAccountID: p.PersonAccountID,
			CompanyID:       company.ID,
		}).Error; err != nil {
			log.Fatalf("failed to seed contract: %v", err)
		}

		log.Printf("seeded company %d, profile %d, contract %d", company.ID, p.ID, c.ID)
	},
}
