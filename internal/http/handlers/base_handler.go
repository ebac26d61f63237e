// README: Base handler utilities (JSON helpers, error bodies).
package handlers

import (
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// maxIDLen bounds itinerary ids taken from the path.
const maxIDLen = 200

func isValidID(v string) bool {
	return v != "" && len(v) <= maxIDLen
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, code, msg string) {
	writeJSON(c, status, errorResponse{Error: code, Message: msg})
}
