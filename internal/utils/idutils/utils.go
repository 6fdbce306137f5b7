package idutils

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// GenerateSnowflakeID generates a row ID for newly provisioned consoles and API keys.
func GenerateSnowflakeID() (int64, error) {
	sfNode, err := snowflake.NewNode(1)
	if err != nil {
		return 0, errors.Wrap(err, "unable to generate ID")
	}

	return sfNode.Generate().Int64(), nil
}
