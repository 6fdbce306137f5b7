package service

import (
	"time"

	"github.com/vouchpost/vouchpost/pkg/errorcode"
	"github.com/vouchpost/vouchpost/pkg/hostname"
)

// VerificationResult is the outcome of judging one response token on behalf of a
// relying site.
type VerificationResult struct {
	Success     bool
	Score       float32
	ChallengeTS time.Time
	Host        hostname.Hostname
	ErrorCodes  []errorcode.VerificationCode
}

// VerificationServiceInterface defines the server-to-server verification service
// relying sites call with a secret and the response token their visitor handed them.
type VerificationServiceInterface interface {
	// Judges a response token. Field problems are collected rather than short-circuited
	// so a caller that got several things wrong learns about all of them at once. The
	// result always carries an answer; an error is returned only for internal faults.
	//
	// Parameters:
	//   the relying site's secret, as submitted
	//   the response token, as submitted
	//   the client address the relying site saw, optional
	//
	// Returns:
	//   the verification result
	Verify(secret string, response string, remoteIP string) (*VerificationResult, error)
}
