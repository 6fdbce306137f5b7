package controller

import "strings"

// "+" sign in a form value should be kept unchanged (instead of being changed into a " ") for Base64 encoded strings.
func processBase64FromForm(parameterValue string) string {
	return strings.ReplaceAll(parameterValue, " ", "+")
}
