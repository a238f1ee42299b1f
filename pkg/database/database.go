package database

import (
	"fmt"
	"log"
	"video_mcq_backend/internal/config"
	"video_mcq_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate 执行数据库迁移。release模式下默认跳过，需通过命令行标志显式开启。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.VideoAsset{},
		&model.MCQQuestion{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
