package appinit

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/vouchpost/vouchpost/internal/models/sqlmodel"
)

// SetupLogger configures the process-wide log level from the config value.
func SetupLogger(logLevel string) error {
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrapf(err, "unknown log level '%v'", logLevel)
	}

	log.SetLevel(level)

	return nil
}

// SetupDB connects to the relational store and migrates the credential tables. The
// handle is returned rather than stashed in a package variable so callers wire it
// into the services explicitly.
func SetupDB(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to the database")
	}

	if err := gdb.AutoMigrate(&sqlmodel.Console{}, &sqlmodel.APIKey{}); err != nil {
		return nil, errors.Wrap(err, "unable to migrate the database schema")
	}

	return gdb, nil
}
