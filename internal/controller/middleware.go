package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vouchpost/vouchpost/pkg/tokens"
)

const operatorClaimsKey = "operatorClaims"

// CORSMiddleware allows the widget to call the challenge endpoints from any embedding page.
func CORSMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		ctx.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		ctx.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, X-Requested-With")
		ctx.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}

// OperatorAuthMiddleware guards console endpoints. It demands a bearer token signed by
// the auth origin and stashes the decoded claims in the request context.
func OperatorAuthMiddleware(resolver tokens.KeyResolver, audience string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := tokens.DecodeAuth(ctx.Request.Context(), token, resolver, audience)
		if err != nil {
			log.Debugf("Rejected an operator token: %v\n", err)
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Set(operatorClaimsKey, claims)
		ctx.Next()
	}
}

// operatorFromContext retrieves the claims stored by OperatorAuthMiddleware.
func operatorFromContext(ctx *gin.Context) (*tokens.AuthClaims, bool) {
	value, exists := ctx.Get(operatorClaimsKey)
	if !exists {
		return nil, false
	}

	claims, ok := value.(*tokens.AuthClaims)
	return claims, ok
}
