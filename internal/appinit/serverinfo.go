package appinit

import (
	"io/ioutil"

	errors "github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/vouchpost/vouchpost/pkg/pow"
)

// ServerInfo is the Go struct for contents in serve.yaml.
type ServerInfo struct {
	Port          int    `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	MySQLDSN      string `yaml:"mysqlDsn"`
	PowDifficulty uint16 `yaml:"powDifficulty"`
	NumWorkers    int    `yaml:"numWorkers"`
	AuthOrigin    string `yaml:"authOrigin"`
	AuthAudience  string `yaml:"authAudience"`
	KeySetTTLSecs int    `yaml:"keySetTtlSecs"`
}

// LoadServerInfo loads the server config file (in YAML) which contains info needed to start a server.
//
// Parameters:
//   the path to the config file
//
// Returns:
//   the `ServerInfo` struct containing the info needed to start a server
func LoadServerInfo(configFilePath string) (ret ServerInfo, err error) {
	yamlStr, err := ioutil.ReadFile(configFilePath)
	if err != nil {
		err = errors.Wrap(err, "unable to read the server config file")
		return
	}

	err = yaml.Unmarshal(yamlStr, &ret)
	if err != nil {
		err = errors.Wrap(err, "unable to parse the server config file")
		return
	}

	if ret.Port == 0 {
		ret.Port = 8080
	}
	if ret.PowDifficulty == 0 {
		ret.PowDifficulty = 3
	}
	if ret.PowDifficulty > pow.MaxDifficulty {
		err = errors.Errorf("powDifficulty %v exceeds the maximum of %v", ret.PowDifficulty, pow.MaxDifficulty)
		return
	}
	if ret.NumWorkers == 0 {
		ret.NumWorkers = 4
	}
	if ret.KeySetTTLSecs == 0 {
		ret.KeySetTTLSecs = 300
	}

	return
}
