package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the standard envelope. The request id set by the
// RequestID middleware is echoed so clients can quote it in reports.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		RequestID:  c.GetString("request_id"),
		Data:       data,
		Errors:     errors,
	})
}
