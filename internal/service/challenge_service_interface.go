package service

import (
	"context"
	"net"

	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/hostname"
	"github.com/vouchpost/vouchpost/pkg/interaction"
)

// ChallengeServiceInterface defines the service that issues proof of work challenges
// and turns completed challenges into response tokens.
type ChallengeServiceInterface interface {
	// Issues a fresh proof of work challenge for the site, sealed into a short-lived
	// token under the site's encoding key.
	//
	// Parameters:
	//   site key
	//
	// Returns:
	//   the challenge token
	IssueChallenge(siteKey encodings.URLSafe) (string, error)

	// Judges a completed challenge. The proof of work solution is verified first and
	// the interaction log is scored only if it holds. On success the caller receives
	// a response token the relying site can later verify.
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
	ProcessChallenge(ctx context.Context, siteKey encodings.URLSafe, challengeToken string, solution uint64, interactions []interaction.Interaction, addr net.IP, host hostname.Hostname) (string, error)

	// Judges a completed challenge from the accessibility flow. The proof of work
	// solution is still required, but no interaction log is scored and the response
	// token carries a full score.
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
	ProcessAccessibilityChallenge(siteKey encodings.URLSafe, challengeToken string, solution uint64, addr net.IP, host hostname.Hostname) (string, error)
}
