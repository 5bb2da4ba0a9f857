package internal

import (
	"fmt"
	"time"

	"DR-SIGN/internal/config"
	"DR-SIGN/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN())
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database connected and migrated successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.DBName))
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organization{},
		&models.Customer{},
		&models.ContractType{},
		&models.ContractPackage{},
		&models.Dress{},
		&models.ContractAddon{},
		&models.ContractTemplate{},
		&models.Contract{},
		&models.ContractDress{},
		&models.ContractAddonLink{},
		&models.ContractSignLink{},
		&models.ActivityLog{},
	)
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
