package errorcode

import "fmt"

const (
	// CodeNotFound marks an error as "resource not found" rather than an infrastructure failure.
	CodeNotFound = "~NOTFOUND~"
	// CodeForbidden marks an error as a permission problem rather than an infrastructure failure.
	CodeForbidden = "~FORBIDDEN~"
	// CodeInvalidKey marks an error as an unknown site key or secret. Unknown and revoked keys
	// are deliberately indistinguishable to callers.
	CodeInvalidKey = "~INVALIDKEY~"
	// CodeInvalidRequest marks an error as a malformed or unverifiable client payload.
	CodeInvalidRequest = "~INVALIDREQUEST~"
	// CodeFailedProofOfWork marks an error as a proof-of-work solution that did not meet the
	// required difficulty.
	CodeFailedProofOfWork = "~FAILEDPOW~"
)

// ErrorNotFound is the error instance carrying `CodeNotFound`.
var ErrorNotFound = fmt.Errorf(CodeNotFound)

// ErrorForbidden is the error instance carrying `CodeForbidden`.
var ErrorForbidden = fmt.Errorf(CodeForbidden)

// ErrorInvalidKey is the error instance carrying `CodeInvalidKey`.
var ErrorInvalidKey = fmt.Errorf(CodeInvalidKey)

// ErrorInvalidRequest is the error instance carrying `CodeInvalidRequest`.
var ErrorInvalidRequest = fmt.Errorf(CodeInvalidRequest)

// ErrorFailedProofOfWork is the error instance carrying `CodeFailedProofOfWork`.
var ErrorFailedProofOfWork = fmt.Errorf(CodeFailedProofOfWork)
