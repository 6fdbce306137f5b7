package hostname

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAcceptsNamesAndAddresses(t *testing.T) {
	for _, valid := range []string{
		"example.com",
		"sub.domain.example.com",
		"localhost",
		"127.0.0.1",
		"[::1]",
	} {
		_, err := Parse(valid)
		assert.NoError(t, err, valid)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, invalid := range []string{
		"",
		"   ",
		"exa mple.com",
		"https://example.com",
		"example.com/path",
		"user@example.com",
	} {
		_, err := Parse(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	h, err := Parse("widget.example.org")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	data, err := json.Marshal(h)
	assert.NoError(t, err)
	assert.Equal(t, `"widget.example.org"`, string(data))

	var decoded Hostname
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, h, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"not a host"`), &decoded))
}
