package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/libreclinica/api-gateway/internal/models"
)

// SendSuccessResponse sends a successful JSON response
func SendSuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendUnauthorizedError sends a 401 Unauthorized error
func SendUnauthorizedError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, message, "")
}

// SendForbiddenError sends a 403 Forbidden error
func SendForbiddenError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusForbidden, models.ErrCodeForbidden, message, "")
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendConflictError sends a 409 Conflict error
func SendConflictError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusConflict, models.ErrCodeConflict, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendServiceResult maps a service envelope to an HTTP response. A failed
// envelope carries a business-rule rejection; its status code depends on
// the failure class encoded in the message.
func SendServiceResult(c *gin.Context, result *models.ServiceResult, successStatus int) {
	if result.Success {
		c.JSON(successStatus, result)
		return
	}
	c.JSON(statusForRejection(result.Message), result)
}

func statusForRejection(message string) int {
	switch {
	case message == "Study not found" || message == "Subject not found" || message == "Form not found":
		return http.StatusNotFound
	case message == "Study with this identifier already exists",
		message == "Subject with this label already exists in study",
		message == "Subject with this person id is already enrolled in study":
		return http.StatusConflict
	case message == "Invalid signer credentials":
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// GetUserIDFromContext extracts the authenticated user's account id
func GetUserIDFromContext(c *gin.Context) int64 {
	userID, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, ok := userID.(int64)
	if !ok {
		return 0
	}
	return id
}

// GetUsernameFromContext extracts the authenticated user's name
func GetUsernameFromContext(c *gin.Context) string {
	username, exists := c.Get("username")
	if !exists {
		return ""
	}
	name, ok := username.(string)
	if !ok {
		return ""
	}
	return name
}

// GetUserTypeFromContext extracts the authenticated user's type id
func GetUserTypeFromContext(c *gin.Context) int {
	userType, exists := c.Get("userType")
	if !exists {
		return 0
	}
	t, ok := userType.(int)
	if !ok {
		return 0
	}
	return t
}

// ParseIDParam parses a positive integer path parameter
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		SendBadRequestError(c, "Invalid "+name, "must be a positive integer")
		return 0, false
	}
	return id, true
}
