package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vouchpost/vouchpost/internal/models/sqlmodel"
	"github.com/vouchpost/vouchpost/internal/service"
	"github.com/vouchpost/vouchpost/pkg/encodings"
)

// A ConsoleController contains a group name and a `ConsoleService` instance. It also implements the interface `Controller`. All of its endpoints demand an operator token.
type ConsoleController struct {
	GroupName      string
	ConsoleSvc     service.ConsoleServiceInterface
	AuthMiddleware gin.HandlerFunc
}

// GetGroupName returns the group name.
func (c *ConsoleController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by ConsoleController.
func (c *ConsoleController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"keys/:siteKey/ownership", "GET"}: []gin.HandlerFunc{c.AuthMiddleware, c.handleCheckOwnership},
	}
}

// handleCheckOwnership reports whether the site key in the path belongs to the console
// of the authenticated operator.
func (c *ConsoleController) handleCheckOwnership(ctx *gin.Context) {
	claims, ok := operatorFromContext(ctx)
	if !ok {
		ctx.Writer.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Validity check
	pel := &ParameterErrorList{}
	siteKeyStr := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("siteKey"), "The site key must not be empty.")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	consoleID, err := sqlmodel.ParseConsoleID(claims.Operator())
	if err != nil {
		ctx.Writer.WriteHeader(http.StatusUnauthorized)
		return
	}

	siteKey, err := encodings.ParseURLSafe(siteKeyStr)
	if err != nil {
		// An unparsable key cannot belong to anyone.
		ctx.JSON(http.StatusOK, OwnershipInfo{Owned: false})
		return
	}

	owned, err := c.ConsoleSvc.CheckAPIKeyOwnership(siteKey, consoleID)
	if err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, OwnershipInfo{Owned: owned})
}
