package db

import (
	"database/sql"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vouchpost/vouchpost/internal/models/sqlmodel"
	"github.com/vouchpost/vouchpost/internal/utils/idutils"
	"github.com/vouchpost/vouchpost/pkg/encodings"
)

// CreateConsole inserts an operator console and returns its ID.
func CreateConsole(gdb *gorm.DB, label, operator string) (int64, error) {
	id, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return 0, err
	}

	row := sqlmodel.Console{
		ID:       id,
		Label:    label,
		Operator: operator,
	}
	if result := gdb.Create(&row); result.Error != nil {
		return 0, errors.Wrap(result.Error, "unable to create console")
	}

	return id, nil
}

// CreateAPIKey mints a fresh credential set for the console and inserts it. The
// generated credentials are returned so the caller can show them exactly once.
func CreateAPIKey(gdb *gorm.DB, consoleID int64, label string) (*APIKey, error) {
	id, err := idutils.GenerateSnowflakeID()
	if err != nil {
		return nil, err
	}

	siteKey, err := encodings.RandomURLSafe()
	if err != nil {
		return nil, err
	}

	encodingKey, err := encodings.RandomStandard()
	if err != nil {
		return nil, err
	}

	secret, err := encodings.RandomStandard()
	if err != nil {
		return nil, err
	}

	row := sqlmodel.APIKey{
		ID:          id,
		ConsoleID:   consoleID,
		SiteKey:     siteKey.Reveal(),
		EncodingKey: encodingKey.Reveal(),
		Secret:      secret.Reveal(),
		Label:       sql.NullString{String: label, Valid: label != ""},
	}
	if result := gdb.Create(&row); result.Error != nil {
		return nil, errors.Wrap(result.Error, "unable to create API key")
	}

	return &APIKey{
		SiteKey:     siteKey,
		EncodingKey: encodingKey,
		Secret:      secret,
		ConsoleID:   consoleID,
		Label:       label,
	}, nil
}
