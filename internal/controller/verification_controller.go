package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vouchpost/vouchpost/internal/service"
)

// A VerificationController contains a group name and a `VerificationService` instance. It also implements the interface `Controller`.
type VerificationController struct {
	GroupName       string
	VerificationSvc service.VerificationServiceInterface
}

// GetGroupName returns the group name.
func (c *VerificationController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by VerificationController.
func (c *VerificationController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "POST"}: []gin.HandlerFunc{c.handleSiteVerify},
	}
}

// handleSiteVerify is the server-to-server verification endpoint. Whatever the relying
// site submitted, the answer is HTTP 200 with a structured body; problems are reported
// through the `error-codes` list, never through the status code.
func (c *VerificationController) handleSiteVerify(ctx *gin.Context) {
	secret := processBase64FromForm(ctx.PostForm("secret"))
	response := ctx.PostForm("response")
	remoteIP := ctx.PostForm("remoteip")

	result, err := c.VerificationSvc.Verify(secret, response, remoteIP)
	if err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())
		return
	}

	body := VerificationResponseBody{
		Success:    result.Success,
		ErrorCodes: result.ErrorCodes,
	}
	if !result.ChallengeTS.IsZero() {
		body.ChallengeTS = result.ChallengeTS.UTC().Format(time.RFC3339)
	}
	if !result.Host.IsZero() {
		body.Hostname = result.Host.String()
	}

	ctx.JSON(http.StatusOK, body)
}
