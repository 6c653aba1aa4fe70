package respond

import (
	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status. Responses can carry
// resume text, so intermediaries must not cache them.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}
