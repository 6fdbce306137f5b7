package service

import (
	"github.com/pkg/errors"

	"github.com/vouchpost/vouchpost/pkg/encodings"
)

// ConsoleService answers credential queries for the operator console backend.
type ConsoleService struct {
	ServiceInfo *Info
}

// Reports whether the site key belongs to the console.
//
// Parameters:
//   site key
//   console ID
//
// Returns:
//   whether the key belongs to the console
func (s *ConsoleService) CheckAPIKeyOwnership(siteKey encodings.URLSafe, consoleID int64) (bool, error) {
	exists, err := s.ServiceInfo.KeyStore.ExistsAPIKeyForConsole(siteKey, consoleID)
	if err != nil {
		return false, errors.Wrap(err, "unable to check API key ownership")
	}

	return exists, nil
}
