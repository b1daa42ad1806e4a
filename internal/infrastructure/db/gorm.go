package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/notification"
	"medquote-backend/internal/domain/quotation"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/setting"
	applog "medquote-backend/internal/infrastructure/logger"
)

func OpenGorm(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return openGorm(mysql.Open(dsn), level)
}

// OpenGormWithDialector opens and pings using an already-built dialector.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return openGorm(dial, logger.Warn)
}

func openGorm(dial gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	applog.L().Info("gorm: connected")
	return db, nil
}

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&account.User{},
		&account.Hospital{},
		&account.Supplier{},
		&account.SupplierCategory{},
		&catalog.Category{},
		&catalog.Product{},
		&rfq.RFQ{},
		&quotation.Quotation{},
		&credit.Transaction{},
		&notification.Notification{},
		&setting.Setting{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	applog.L().Info("gorm: schema migrated", zap.Int("tables", len(Models())))
	return nil
}
