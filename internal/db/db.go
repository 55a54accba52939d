package db

import (
	"fmt"
	"path/filepath"

	puresqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const fileName = "wooexport.db"

type Handle struct {
	DB     *gorm.DB
	Path   string // plik albo DSN
	Driver string
}

// Open wybiera dialekt. Dla sqlite pusty DSN = plik wooexport.db w dir.
func Open(driver, dsn, dir string) (*Handle, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		if dsn == "" {
			dsn = filepath.Join(dir, fileName)
		}
		dialector = sqlite.Open(dsn)
	case "sqlite-pure":
		if dsn == "" {
			dsn = filepath.Join(dir, fileName)
		}
		dialector = puresqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Info, jeśli potrzebny verbose SQL
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &Handle{DB: gdb, Path: dsn, Driver: driver}, nil
}

func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
