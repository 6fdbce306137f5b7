// Package pow implements the hash-puzzle challenge used to rate-limit automated
// requesters. A challenge is a pure value: the server keeps no state between issuing a
// puzzle and verifying its solution, because the challenge rides inside a signed token.
package pow

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MaxDifficulty bounds the number of leading zero hex characters a challenge may require.
// Expected solver cost is about 16^difficulty hash operations, so anything above 32 is
// unanswerable in practice.
const MaxDifficulty = 32

// ErrInvalidDifficulty reports a challenge whose difficulty is outside 1..=MaxDifficulty.
// Such a challenge never originates from this server, so callers treat it as internal.
var ErrInvalidDifficulty = errors.New("proof of work difficulty out of range")

// ErrDifficultyNotMet reports a solution whose digest lacks the required zero prefix.
var ErrDifficultyNotMet = errors.New("proof of work difficulty not met")

// Challenge is a proof-of-work puzzle. Verification is a single hash while solving takes
// an expected 16^Difficulty attempts, which is the asymmetry the protocol relies on.
type Challenge struct {
	Nonce      uint64 `json:"nonce"`
	Difficulty uint16 `json:"difficulty"`
	Timestamp  int64  `json:"timestamp"`
}

// Generate creates a fresh challenge at the given difficulty with a cryptographically
// random nonce and the current wall clock.
func Generate(difficulty uint16) (Challenge, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return Challenge{}, errors.Wrap(err, "unable to draw random nonce")
	}

	return Challenge{
		Nonce:      binary.LittleEndian.Uint64(raw[:]),
		Difficulty: difficulty,
		Timestamp:  time.Now().Unix(),
	}, nil
}

// HashSolution computes the challenge digest for a candidate solution: SHA-256 over the
// little-endian concatenation of nonce, difficulty, timestamp and solution, rendered as
// lowercase hex.
func (c Challenge) HashSolution(solution uint64) string {
	buf := make([]byte, 0, 8+2+8+8)
	buf = binary.LittleEndian.AppendUint64(buf, c.Nonce)
	buf = binary.LittleEndian.AppendUint16(buf, c.Difficulty)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Timestamp))
	buf = binary.LittleEndian.AppendUint64(buf, solution)

	digest := sha256.Sum256(buf)
	return hex.EncodeToString(digest[:])
}

// VerifySolution checks a client-supplied solution. It returns ErrInvalidDifficulty for a
// malformed challenge, ErrDifficultyNotMet for an insufficient digest and nil on success.
func (c Challenge) VerifySolution(solution uint64) error {
	if c.Difficulty == 0 || c.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}

	if !isSolution(c.HashSolution(solution), c.Difficulty) {
		return ErrDifficultyNotMet
	}

	return nil
}

// Solve brute-forces the challenge from zero upward. Only tests and the solver tool use
// it; production clients solve in the browser.
func (c Challenge) Solve() uint64 {
	for solution := uint64(0); ; solution++ {
		if isSolution(c.HashSolution(solution), c.Difficulty) {
			return solution
		}
	}
}

func isSolution(digestHex string, difficulty uint16) bool {
	return strings.HasPrefix(digestHex, strings.Repeat("0", int(difficulty)))
}
