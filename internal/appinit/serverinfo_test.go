package appinit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "serve.yaml")
	err := os.WriteFile(path, []byte(contents), 0o600)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	return path
}

func TestLoadServerInfoDefaults(t *testing.T) {
	path := writeConfigFile(t, "mysqlDsn: user:pass@tcp(localhost:3306)/vouchpost\n")

	serverInfo, err := LoadServerInfo(path)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, 8080, serverInfo.Port)
	assert.EqualValues(t, 3, serverInfo.PowDifficulty)
	assert.Equal(t, 4, serverInfo.NumWorkers)
	assert.Equal(t, 300, serverInfo.KeySetTTLSecs)
}

func TestLoadServerInfoRejectsOversizedDifficulty(t *testing.T) {
	// A difficulty above 32 would make every issued challenge unverifiable, so the
	// server must refuse to start with one.
	path := writeConfigFile(t, "powDifficulty: 33\n")

	_, err := LoadServerInfo(path)
	assert.Error(t, err)
}
