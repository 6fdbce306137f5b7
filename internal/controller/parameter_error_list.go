package controller

import (
	"net"
	"strconv"
	"strings"

	"github.com/vouchpost/vouchpost/pkg/hostname"
)

// ParameterErrorList contains a list of human-readable errors about parameters.
type ParameterErrorList []string

// AppendIfEmptyOrBlankSpaces appends the error message specified if `str` is empty or contains only blank spaces.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the trimmed string
func (pel *ParameterErrorList) AppendIfEmptyOrBlankSpaces(str string, errMsg string) string {
	if str = strings.TrimSpace(str); str == "" {
		*pel = append(*pel, errMsg)
	}

	return str
}

// AppendIfNotUint64 appends the error message specified if `str` is not an uint64.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the parsed uint64 or 0 if there's error
func (pel *ParameterErrorList) AppendIfNotUint64(str string, errMsg string) uint64 {
	uintResult, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		*pel = append(*pel, errMsg)
	}

	return uintResult
}

// AppendIfNotIP appends the error message specified if `str` is not an IP address.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the parsed IP or nil if there's error
func (pel *ParameterErrorList) AppendIfNotIP(str string, errMsg string) net.IP {
	ip := net.ParseIP(str)
	if ip == nil {
		*pel = append(*pel, errMsg)
	}

	return ip
}

// AppendIfNotHostname appends the error message specified if `str` is not a valid hostname.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the parsed hostname or the zero value if there's error
func (pel *ParameterErrorList) AppendIfNotHostname(str string, errMsg string) hostname.Hostname {
	host, err := hostname.Parse(str)
	if err != nil {
		*pel = append(*pel, errMsg)
	}

	return host
}
