// Package response renders the JSON envelope every handler replies
// with: {"success": true, "data": ...} on the happy path, or
// {"success": false, "error": {...}} with a machine-readable code
// clients can branch on.
package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	fail(c, statusCode, gin.H{
		"code":    code,
		"message": message,
	})
}

// ErrorWithDetails carries an extra payload alongside the error, used
// for request validation output.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	fail(c, statusCode, gin.H{
		"code":    code,
		"message": message,
		"details": details,
	})
}

func fail(c *gin.Context, statusCode int, errBody gin.H) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   errBody,
	})
}
