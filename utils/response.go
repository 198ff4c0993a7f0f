package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the uniform error payload: a status code on the wire and
// a human-readable detail string in the body. Internal storage errors are
// never echoed to clients.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Error writes a JSON error response with the given status code.
func Error(ctx *gin.Context, status int, detail string) {
	ctx.JSON(status, ErrorResponse{Detail: detail})
}
