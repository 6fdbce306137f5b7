package errorcode

// VerificationCode is a stable, user-facing error code returned in the `error-codes` list of a
// site verification response. Relying-site integrations match on these strings, so the set is
// closed and the values never change.
type VerificationCode string

const (
	VerificationMissingInputSecret   VerificationCode = "missing-input-secret"
	VerificationInvalidInputSecret   VerificationCode = "invalid-input-secret"
	VerificationMissingInputResponse VerificationCode = "missing-input-response"
	VerificationInvalidInputResponse VerificationCode = "invalid-input-response"
	VerificationBadRequest           VerificationCode = "bad-request"
	// VerificationTimeoutOrDuplicate is reported when the response token has expired. Expiry is
	// also the only duplicate-submission defense, hence the combined name.
	VerificationTimeoutOrDuplicate VerificationCode = "timeout-or-duplicate"
)
