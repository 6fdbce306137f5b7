package pow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveThenVerify(t *testing.T) {
	challenge, err := Generate(4)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	solution := challenge.Solve()
	assert.NoError(t, challenge.VerifySolution(solution))
}

func TestNeighboringSolutionFails(t *testing.T) {
	challenge, err := Generate(4)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	solution := challenge.Solve()
	if solution == 0 {
		t.Skip("smallest solution is zero, no predecessor to check")
	}

	// Solve returns the smallest valid solution, so its predecessor cannot satisfy the
	// difficulty.
	err = challenge.VerifySolution(solution - 1)
	assert.ErrorIs(t, err, ErrDifficultyNotMet)
}

func TestDifficultyBounds(t *testing.T) {
	challenge := Challenge{Nonce: 42, Difficulty: 0, Timestamp: 1739555092}
	assert.ErrorIs(t, challenge.VerifySolution(0), ErrInvalidDifficulty)

	challenge.Difficulty = MaxDifficulty + 1
	assert.ErrorIs(t, challenge.VerifySolution(0), ErrInvalidDifficulty)

	// any solution is rejected the same way regardless of its digest
	challenge.Difficulty = 0
	assert.ErrorIs(t, challenge.VerifySolution(challenge.Solve()), ErrInvalidDifficulty)
}

func TestHashSolutionIsDeterministic(t *testing.T) {
	challenge := Challenge{Nonce: 4077096492, Difficulty: 4, Timestamp: 1739555092}

	first := challenge.HashSolution(13062)
	second := challenge.HashSolution(13062)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestHashSolutionDependsOnEveryField(t *testing.T) {
	base := Challenge{Nonce: 7, Difficulty: 3, Timestamp: 1700000000}
	digest := base.HashSolution(99)

	nonceChanged := base
	nonceChanged.Nonce++
	assert.NotEqual(t, digest, nonceChanged.HashSolution(99))

	difficultyChanged := base
	difficultyChanged.Difficulty++
	assert.NotEqual(t, digest, difficultyChanged.HashSolution(99))

	timestampChanged := base
	timestampChanged.Timestamp++
	assert.NotEqual(t, digest, timestampChanged.HashSolution(99))

	assert.NotEqual(t, digest, base.HashSolution(100))
}

func TestAllDifficultiesVerifiable(t *testing.T) {
	// Beyond difficulty 4 the brute force gets slow; the lower range is enough to cover
	// the prefix check for every branch it takes.
	for difficulty := uint16(1); difficulty <= 4; difficulty++ {
		challenge, err := Generate(difficulty)
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}
		assert.NoError(t, challenge.VerifySolution(challenge.Solve()))
	}
}
