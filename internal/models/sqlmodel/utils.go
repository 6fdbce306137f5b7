package sqlmodel

import (
	"database/sql"

	"github.com/bwmarrin/snowflake"
)

func parseSnowflakeStringToInt64(str string) (int64, error) {
	sfID, err := snowflake.ParseString(str)
	if err != nil {
		return 0, err
	}

	return sfID.Int64(), nil
}

func parseInt64ToSnowflakeString(i int64) string {
	return snowflake.ParseInt64(i).String()
}

func parseNullStringToString(s sql.NullString) string {
	if !s.Valid {
		return ""
	}

	return s.String
}

// ConsoleIDString renders the snowflake console ID the way it appears in operator-facing
// URLs and logs.
func (k APIKey) ConsoleIDString() string {
	return parseInt64ToSnowflakeString(k.ConsoleID)
}

// ParseConsoleID parses an operator-supplied console ID back into its row form.
func ParseConsoleID(str string) (int64, error) {
	return parseSnowflakeStringToInt64(str)
}

// LabelString returns the optional key label or the empty string.
func (k APIKey) LabelString() string {
	return parseNullStringToString(k.Label)
}
