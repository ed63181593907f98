package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/flowview/errors"
)

func tooLarge(limit int64) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeInvalidInput,
		fmt.Sprintf("Request body exceeds %d bytes.", limit),
		http.StatusRequestEntityTooLarge)
}

func rateLimited() *apperrors.AppError {
	return apperrors.RateLimited()
}
