package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		C.Database.Host,
		C.Database.Port,
		C.Database.User,
		C.Database.Password,
		C.Database.Name,
		C.Database.SSLMode)

	// TranslateError turns driver unique-violation errors into gorm.ErrDuplicatedKey,
	// which the like/subscription toggles rely on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	DB = db
	return nil
}
