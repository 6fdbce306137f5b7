package encodings

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomKeysRoundTrip(t *testing.T) {
	std, err := RandomStandard()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	parsed, err := ParseStandard(std.Reveal())
	assert.NoError(t, err)
	assert.Equal(t, std, parsed)

	raw, err := std.Bytes()
	assert.NoError(t, err)
	assert.Len(t, raw, KeySize)

	urlSafe, err := RandomURLSafe()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	_, err = ParseURLSafe(urlSafe.Reveal())
	assert.NoError(t, err)
}

func TestParseRejectsMalformedEncoding(t *testing.T) {
	_, err := ParseStandard("not-base64!!!")
	assert.Error(t, err)

	// URL-safe alphabet is not valid in the standard parser once padding differs
	urlSafe, err := RandomURLSafe()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	tampered := strings.Replace(urlSafe.Reveal(), "A", "+", 1)
	if strings.ContainsAny(tampered, "+/") {
		_, err = ParseURLSafe(tampered)
		assert.Error(t, err)
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, KeySize-1))
	_, err := ParseStandard(short)
	assert.Error(t, err)

	long := base64.URLEncoding.EncodeToString(make([]byte, KeySize+3))
	_, err = ParseURLSafe(long)
	assert.Error(t, err)
}

func TestFormattingRedactsValues(t *testing.T) {
	std, err := RandomStandard()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	for _, rendered := range []string{
		fmt.Sprintf("%v", std),
		fmt.Sprintf("%s", std),
		fmt.Sprintf("%#v", std),
	} {
		assert.NotContains(t, rendered, std.Reveal())
		assert.Contains(t, rendered, "redacted")
	}
}

func TestErrorNeverRevealsInput(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString(make([]byte, KeySize)) + "="
	_, err := ParseStandard(secret)
	if isError := assert.Error(t, err); !isError {
		t.FailNow()
	}
	assert.NotContains(t, err.Error(), secret)
}
