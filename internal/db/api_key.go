// Package db is the narrow query layer the verification flow consults. It exposes only
// the three lookups the flow needs, so the core stays independent of the schema and can
// be tested against an in-memory store.
package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vouchpost/vouchpost/internal/models/sqlmodel"
	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/errorcode"
)

// APIKey is the validated in-memory form of one relying site's credentials.
type APIKey struct {
	SiteKey     encodings.URLSafe
	EncodingKey encodings.Standard
	Secret      encodings.Standard
	ConsoleID   int64
	Label       string
}

// KeyStore is the query interface the verification core consumes. Lookups that find
// nothing return `errorcode.ErrorNotFound`; callers translate that to the information-
// hiding "invalid key" condition.
type KeyStore interface {
	FetchAPIKeyBySiteKey(siteKey encodings.URLSafe) (*APIKey, error)
	FetchAPIKeyBySecret(secret encodings.Standard) (*APIKey, error)
	ExistsAPIKeyForConsole(siteKey encodings.URLSafe, consoleID int64) (bool, error)
}

// GormKeyStore implements KeyStore over the relational store.
type GormKeyStore struct {
	DB *gorm.DB
}

// FetchAPIKeyBySiteKey looks the credentials up by the public site key.
func (s *GormKeyStore) FetchAPIKeyBySiteKey(siteKey encodings.URLSafe) (*APIKey, error) {
	var row sqlmodel.APIKey
	result := s.DB.Where("site_key = ?", siteKey.Reveal()).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errorcode.ErrorNotFound
		}
		return nil, errors.Wrap(result.Error, "unable to fetch API key by site key")
	}

	return fromRow(&row)
}

// FetchAPIKeyBySecret looks the credentials up by the relying site's bearer secret.
func (s *GormKeyStore) FetchAPIKeyBySecret(secret encodings.Standard) (*APIKey, error) {
	var row sqlmodel.APIKey
	result := s.DB.Where("secret = ?", secret.Reveal()).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errorcode.ErrorNotFound
		}
		return nil, errors.Wrap(result.Error, "unable to fetch API key by secret")
	}

	return fromRow(&row)
}

// ExistsAPIKeyForConsole reports whether the site key belongs to the console.
func (s *GormKeyStore) ExistsAPIKeyForConsole(siteKey encodings.URLSafe, consoleID int64) (bool, error) {
	var count int64
	result := s.DB.Model(&sqlmodel.APIKey{}).
		Where("site_key = ? AND console_id = ?", siteKey.Reveal(), consoleID).
		Count(&count)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "unable to check API key ownership")
	}

	return count > 0, nil
}

// fromRow re-validates stored credentials at the storage boundary. A row that fails
// here was corrupted outside the application and is surfaced as an internal error.
func fromRow(row *sqlmodel.APIKey) (*APIKey, error) {
	siteKey, err := encodings.ParseURLSafe(row.SiteKey)
	if err != nil {
		return nil, errors.Wrap(err, "stored site key failed validation")
	}

	encodingKey, err := encodings.ParseStandard(row.EncodingKey)
	if err != nil {
		return nil, errors.Wrap(err, "stored encoding key failed validation")
	}

	secret, err := encodings.ParseStandard(row.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "stored secret failed validation")
	}

	return &APIKey{
		SiteKey:     siteKey,
		EncodingKey: encodingKey,
		Secret:      secret,
		ConsoleID:   row.ConsoleID,
		Label:       row.LabelString(),
	}, nil
}
