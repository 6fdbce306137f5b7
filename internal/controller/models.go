package controller

import "github.com/vouchpost/vouchpost/pkg/errorcode"

// ChallengeTokenInfo carries a freshly issued challenge token to the widget.
type ChallengeTokenInfo struct {
	Token string `json:"token"`
}

// ResponseTokenInfo carries the response token a visitor hands to the relying site.
type ResponseTokenInfo struct {
	Token string `json:"token"`
}

// VerificationResponseBody is the wire shape of a site verification answer. The field
// names are part of the public API relying sites integrate against.
type VerificationResponseBody struct {
	Success     bool                         `json:"success"`
	ChallengeTS string                       `json:"challenge_ts,omitempty"`
	Hostname    string                       `json:"hostname,omitempty"`
	ErrorCodes  []errorcode.VerificationCode `json:"error-codes,omitempty"`
}

// OwnershipInfo answers a console's question about one of its site keys.
type OwnershipInfo struct {
	Owned bool `json:"owned"`
}
