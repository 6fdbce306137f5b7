package service

import "github.com/vouchpost/vouchpost/pkg/encodings"

// ConsoleServiceInterface defines the queries the operator console backend is allowed
// to make about credentials.
type ConsoleServiceInterface interface {
	// Reports whether the site key belongs to the console.
	//
	// Parameters:
	//   site key
	//   console ID
	//
	// Returns:
	//   whether the key belongs to the console
	CheckAPIKeyOwnership(siteKey encodings.URLSafe, consoleID int64) (bool, error)
}
