package repositories

import (
	"log"

	"github.com/avelkov/cloudnest/internal/config"
	"github.com/avelkov/cloudnest/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase() {
	var dialector gorm.Dialector
	if dsn := config.Envs.DB_URL; dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		// No DSN configured: fall back to an embedded SQLite file.
		dialector = sqlite.Open(config.Envs.DBFile)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.File{},
	)
	if err != nil {
		log.Fatal("Migration failed:", err)
	}
	DB = db
	log.Println("Successfully connected to database")
}
