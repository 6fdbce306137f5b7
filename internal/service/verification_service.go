package service

import (
	"net"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vouchpost/vouchpost/internal/db"
	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/errorcode"
	"github.com/vouchpost/vouchpost/pkg/tokens"
)

// PassingScore is the lowest score a response token may carry and still verify.
const PassingScore = 0.5

// VerificationService judges response tokens on behalf of relying sites.
type VerificationService struct {
	ServiceInfo *Info
}

// Judges a response token. Field problems are collected rather than short-circuited so
// a caller that got several things wrong learns about all of them at once.
//
// Parameters:
//   the relying site's secret, as submitted
//   the response token, as submitted
//   the client address the relying site saw, optional
//
// Returns:
//   the verification result
func (s *VerificationService) Verify(secret string, response string, remoteIP string) (*VerificationResult, error) {
	result := &VerificationResult{}

	apiKey := s.resolveSecret(secret, result)

	if response == "" {
		result.appendCode(errorcode.VerificationMissingInputResponse)
	}

	var remoteAddr net.IP
	if remoteIP != "" {
		remoteAddr = net.ParseIP(remoteIP)
		if remoteAddr == nil {
			result.appendCode(errorcode.VerificationBadRequest)
		}
	}

	if len(result.ErrorCodes) > 0 {
		return result, nil
	}

	claims, err := tokens.DecodeResponse(response, apiKey.EncodingKey)
	if err != nil {
		if tokens.IsExpired(err) {
			// An expired token and a replayed one are indistinguishable to the relying
			// site, so both report the same code.
			result.appendCode(errorcode.VerificationTimeoutOrDuplicate)
		} else {
			log.Debugf("Rejected a response token: %v\n", err)
			result.appendCode(errorcode.VerificationInvalidInputResponse)
		}
		return result, nil
	}

	result.Score = claims.Score
	if claims.IssuedAt != nil {
		result.ChallengeTS = claims.IssuedAt.Time
	}
	result.Host = claims.Host
	result.Success = claims.Score >= PassingScore
	if remoteAddr != nil && !remoteAddr.Equal(claims.Addr) {
		result.Success = false
	}

	return result, nil
}

// resolveSecret maps the submitted secret to stored credentials, collecting the
// error code on the result when it cannot. A missing or unknown secret is not an
// internal fault.
func (s *VerificationService) resolveSecret(secret string, result *VerificationResult) *db.APIKey {
	if secret == "" {
		result.appendCode(errorcode.VerificationMissingInputSecret)
		return nil
	}

	parsed, err := encodings.ParseStandard(secret)
	if err != nil {
		result.appendCode(errorcode.VerificationInvalidInputSecret)
		return nil
	}

	apiKey, err := s.ServiceInfo.KeyStore.FetchAPIKeyBySecret(parsed)
	if err != nil {
		if !errors.Is(err, errorcode.ErrorNotFound) {
			log.Errorf("Unable to look a secret up: %v\n", err)
		}
		// A storage fault reads the same as an unknown secret so the endpoint never
		// leaks whether a submitted secret exists.
		result.appendCode(errorcode.VerificationInvalidInputSecret)
		return nil
	}

	return apiKey
}

func (r *VerificationResult) appendCode(code errorcode.VerificationCode) {
	r.ErrorCodes = append(r.ErrorCodes, code)
}
