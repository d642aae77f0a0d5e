package db

import (
	"log"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/analytics"
	"github.com/everafter-ai/everafter/internal/convo"
	"github.com/everafter-ai/everafter/internal/decisions"
	"github.com/everafter-ai/everafter/internal/kernel"
	"github.com/everafter-ai/everafter/internal/models"
	"github.com/everafter-ai/everafter/internal/planning"
)

// Connect opens the database and runs migrations. A DSN prefixed with
// "sqlite:" (or the literal ":memory:") selects sqlite for local dev.
func Connect(dsn string) *gorm.DB {
	var (
		gdb *gorm.DB
		err error
	)
	switch {
	case dsn == ":memory:":
		gdb, err = gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	case strings.HasPrefix(dsn, "sqlite:"):
		gdb, err = gorm.Open(gormsqlite.Open(strings.TrimPrefix(dsn, "sqlite:")), &gorm.Config{})
	default:
		gdb, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.Tenant{},
		&kernel.Kernel{},
		&convo.Conversation{},
		&convo.Message{},
		&decisions.Decision{},
		&planning.Page{},
		&analytics.Event{},
	)
}
