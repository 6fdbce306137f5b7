package service

import (
	"context"
	"net"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vouchpost/vouchpost/internal/db"
	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/errorcode"
	"github.com/vouchpost/vouchpost/pkg/hostname"
	"github.com/vouchpost/vouchpost/pkg/interaction"
	"github.com/vouchpost/vouchpost/pkg/pow"
	"github.com/vouchpost/vouchpost/pkg/tokens"
)

// ChallengeService issues proof of work challenges and judges completed ones.
type ChallengeService struct {
	ServiceInfo *Info
}

// Issues a fresh proof of work challenge for the site, sealed into a short-lived
// token under the site's encoding key.
//
// Parameters:
//   site key
//
// Returns:
//   the challenge token
func (s *ChallengeService) IssueChallenge(siteKey encodings.URLSafe) (string, error) {
	apiKey, err := s.lookupSite(siteKey)
	if err != nil {
		return "", err
	}

	challenge, err := pow.Generate(s.ServiceInfo.Difficulty)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate a challenge")
	}

	token, err := tokens.EncodePow(challenge, apiKey.EncodingKey)
	if err != nil {
		return "", errors.Wrap(err, "unable to seal the challenge")
	}

	return token, nil
}

// Judges a completed challenge. The proof of work solution is verified first and the
// interaction log is scored only if it holds.
//
// Parameters:
//   site key
//   the challenge token previously issued
//   the proof of work solution
//   the recorded interaction log
//   the client address
//   the hostname the widget ran on
//
// Returns:
//   the response token
func (s *ChallengeService) ProcessChallenge(ctx context.Context, siteKey encodings.URLSafe, challengeToken string, solution uint64, interactions []interaction.Interaction, addr net.IP, host hostname.Hostname) (string, error) {
	apiKey, challenge, err := s.reopenChallenge(siteKey, challengeToken)
	if err != nil {
		return "", err
	}

	// The solution gates scoring. An unsolved challenge is rejected before any work is
	// spent on the interaction log.
	if err := challenge.VerifySolution(solution); err != nil {
		if errors.Is(err, pow.ErrInvalidDifficulty) {
			// The challenge came back under our own seal, so an out-of-range
			// difficulty is a server fault, not a failed solve.
			return "", errors.Wrap(err, "reopened a challenge this server cannot verify")
		}
		log.Debugf("Rejected a challenge submission with an unsolved proof of work: %v\n", err)
		return "", errorcode.ErrorFailedProofOfWork
	}

	score, err := s.ServiceInfo.Analysis.Analyze(ctx, interactions)
	if err != nil {
		if errors.Is(err, interaction.ErrNoActions) || errors.Is(err, interaction.ErrTooManyInteractions) {
			return "", errorcode.ErrorInvalidRequest
		}
		return "", errors.Wrap(err, "unable to score the interaction log")
	}

	return s.sealResponse(apiKey, score, addr, host)
}

// Judges a completed challenge from the accessibility flow. No interaction log is
// scored and the response token carries a full score.
//
// Parameters:
//   site key
//   the challenge token previously issued
//   the proof of work solution
//   the client address
//   the hostname the widget ran on
//
// Returns:
//   the response token
func (s *ChallengeService) ProcessAccessibilityChallenge(siteKey encodings.URLSafe, challengeToken string, solution uint64, addr net.IP, host hostname.Hostname) (string, error) {
	apiKey, challenge, err := s.reopenChallenge(siteKey, challengeToken)
	if err != nil {
		return "", err
	}

	if err := challenge.VerifySolution(solution); err != nil {
		if errors.Is(err, pow.ErrInvalidDifficulty) {
			return "", errors.Wrap(err, "reopened a challenge this server cannot verify")
		}
		log.Debugf("Rejected an accessibility submission with an unsolved proof of work: %v\n", err)
		return "", errorcode.ErrorFailedProofOfWork
	}

	return s.sealResponse(apiKey, 1.0, addr, host)
}

func (s *ChallengeService) lookupSite(siteKey encodings.URLSafe) (*db.APIKey, error) {
	apiKey, err := s.ServiceInfo.KeyStore.FetchAPIKeyBySiteKey(siteKey)
	if err != nil {
		if errors.Is(err, errorcode.ErrorNotFound) {
			// The response never distinguishes an unknown site key from other key
			// problems.
			return nil, errorcode.ErrorInvalidKey
		}
		return nil, errors.Wrap(err, "unable to look the site up")
	}

	return apiKey, nil
}

func (s *ChallengeService) reopenChallenge(siteKey encodings.URLSafe, challengeToken string) (*db.APIKey, pow.Challenge, error) {
	apiKey, err := s.lookupSite(siteKey)
	if err != nil {
		return nil, pow.Challenge{}, err
	}

	claims, err := tokens.DecodePow(challengeToken, apiKey.EncodingKey)
	if err != nil {
		// An expired, tampered or foreign token all read the same to the client.
		log.Debugf("Rejected a challenge token: %v\n", err)
		return nil, pow.Challenge{}, errorcode.ErrorInvalidRequest
	}

	return apiKey, claims.Challenge, nil
}

func (s *ChallengeService) sealResponse(apiKey *db.APIKey, score float32, addr net.IP, host hostname.Hostname) (string, error) {
	token, err := tokens.EncodeResponse(tokens.ResponseClaims{
		Score: score,
		Addr:  addr,
		Host:  host,
	}, apiKey.EncodingKey)
	if err != nil {
		return "", errors.Wrap(err, "unable to seal the response")
	}

	return token, nil
}
