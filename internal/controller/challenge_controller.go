package controller

import (
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vouchpost/vouchpost/internal/service"
	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/errorcode"
	"github.com/vouchpost/vouchpost/pkg/hostname"
	"github.com/vouchpost/vouchpost/pkg/interaction"
)

// A ChallengeController contains a group name and a `ChallengeService` instance. It also implements the interface `Controller`.
type ChallengeController struct {
	GroupName    string
	ChallengeSvc service.ChallengeServiceInterface
}

// GetGroupName returns the group name.
func (c *ChallengeController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by ChallengeController.
func (c *ChallengeController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "GET"}:               []gin.HandlerFunc{c.handleGetChallenge},
		urlMethodPair{"process", "POST"}:       []gin.HandlerFunc{c.handleProcessChallenge},
		urlMethodPair{"accessibility", "POST"}: []gin.HandlerFunc{c.handleProcessAccessibilityChallenge},
	}
}

type challengeSubmissionBody struct {
	SiteKey      string                    `json:"sitekey"`
	Token        string                    `json:"token"`
	Solution     uint64                    `json:"solution"`
	Interactions []interaction.Interaction `json:"interactions"`
}

func (c *ChallengeController) handleGetChallenge(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}

	siteKeyStr := ctx.Query("sitekey")
	siteKeyStr = pel.AppendIfEmptyOrBlankSpaces(siteKeyStr, "The site key must not be empty.")

	// Early return after extracting common parameters if the error list is not empty
	if len(*pel) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	siteKey, err := encodings.ParseURLSafe(siteKeyStr)
	if err != nil {
		*pel = append(*pel, "The site key is malformed.")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	token, err := c.ChallengeSvc.IssueChallenge(siteKey)

	// Check error type and generate the corresponding response
	if err == nil {
		info := ChallengeTokenInfo{
			Token: token,
		}
		ctx.JSON(http.StatusOK, info)
	} else if errors.Cause(err) == errorcode.ErrorInvalidKey {
		ctx.Writer.WriteHeader(http.StatusForbidden)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *ChallengeController) handleProcessChallenge(ctx *gin.Context) {
	body, siteKey, addr, host, ok := c.bindSubmission(ctx)
	if !ok {
		return
	}

	token, err := c.ChallengeSvc.ProcessChallenge(ctx.Request.Context(), siteKey, body.Token, body.Solution, body.Interactions, addr, host)

	c.writeSubmissionResult(ctx, token, err)
}

func (c *ChallengeController) handleProcessAccessibilityChallenge(ctx *gin.Context) {
	body, siteKey, addr, host, ok := c.bindSubmission(ctx)
	if !ok {
		return
	}

	token, err := c.ChallengeSvc.ProcessAccessibilityChallenge(siteKey, body.Token, body.Solution, addr, host)

	c.writeSubmissionResult(ctx, token, err)
}

// bindSubmission extracts and validates everything a challenge submission needs: the
// JSON body, the site key, the client address and the hostname of the embedding page.
func (c *ChallengeController) bindSubmission(ctx *gin.Context) (*challengeSubmissionBody, encodings.URLSafe, net.IP, hostname.Hostname, bool) {
	pel := &ParameterErrorList{}

	var body challengeSubmissionBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		*pel = append(*pel, "The request body is malformed.")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return nil, encodings.URLSafe{}, nil, hostname.Hostname{}, false
	}

	body.SiteKey = pel.AppendIfEmptyOrBlankSpaces(body.SiteKey, "The site key must not be empty.")
	body.Token = pel.AppendIfEmptyOrBlankSpaces(body.Token, "The challenge token must not be empty.")

	addr := pel.AppendIfNotIP(ctx.ClientIP(), "The client address cannot be determined.")
	host := c.embeddingHost(ctx, pel)

	if len(*pel) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return nil, encodings.URLSafe{}, nil, hostname.Hostname{}, false
	}

	siteKey, err := encodings.ParseURLSafe(body.SiteKey)
	if err != nil {
		*pel = append(*pel, "The site key is malformed.")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return nil, encodings.URLSafe{}, nil, hostname.Hostname{}, false
	}

	return &body, siteKey, addr, host, true
}

// embeddingHost derives the hostname of the page the widget ran on from the Origin
// header. The client never states it directly, so a forged value would also have to
// forge the browser's Origin.
func (c *ChallengeController) embeddingHost(ctx *gin.Context, pel *ParameterErrorList) hostname.Hostname {
	origin := ctx.GetHeader("Origin")
	if origin == "" {
		*pel = append(*pel, "The Origin header must be present.")
		return hostname.Hostname{}
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		*pel = append(*pel, "The Origin header is malformed.")
		return hostname.Hostname{}
	}

	return pel.AppendIfNotHostname(parsed.Hostname(), "The Origin header is malformed.")
}

func (c *ChallengeController) writeSubmissionResult(ctx *gin.Context, token string, err error) {
	// Check error type and generate the corresponding response
	if err == nil {
		info := ResponseTokenInfo{
			Token: token,
		}
		ctx.JSON(http.StatusOK, info)
	} else if errors.Cause(err) == errorcode.ErrorInvalidKey || errors.Cause(err) == errorcode.ErrorForbidden {
		ctx.Writer.WriteHeader(http.StatusForbidden)
	} else if errors.Cause(err) == errorcode.ErrorFailedProofOfWork {
		ctx.Writer.WriteHeader(http.StatusBadRequest)
	} else if errors.Cause(err) == errorcode.ErrorInvalidRequest {
		ctx.Writer.WriteHeader(http.StatusBadRequest)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
