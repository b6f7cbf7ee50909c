// Package controllers handles HTTP request handling
package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/pkg/helpers"
)

// requireUser returns the authenticated user id or writes a 401
func requireUser(ctx *gin.Context) (int64, bool) {
	userID, ok := helpers.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

// viewerID returns the authenticated user id, or 0 for anonymous requests
func viewerID(ctx *gin.Context) int64 {
	userID, _ := helpers.CurrentUserID(ctx)
	return userID
}

// pathID parses a positive id path parameter or writes a 400
func pathID(ctx *gin.Context, name, label string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, name)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithField(name).
			WithDetails("ID must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// formFile reads the multipart "file" field or writes a 400
func formFile(ctx *gin.Context) (*multipart.FileHeader, bool) {
	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File is required").
			WithField("file").
			WithDetails(err.Error())
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return file, true
}

// hasBody reports whether the request carries a body to bind
func hasBody(ctx *gin.Context) bool {
	return ctx.Request.Body != nil && ctx.Request.Body != http.NoBody && ctx.Request.ContentLength != 0
}
