package handlerUtil

import (
	"errors"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/api/liveness"
	"FaceVerify/pkg/log"
	"FaceVerify/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	// Session errors carry the reason the caller needs to restart the flow.
	if errors.Is(err, liveness.ErrSessionNotFound) {
		h.logger.WithFields(fields).Warn("Liveness session not found")
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Liveness session not found or expired",
			Code:  "SESSION_NOT_FOUND",
		})
	}

	if errors.Is(err, liveness.ErrSessionComplete) {
		h.logger.WithFields(fields).Warn("Liveness session already complete")
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: "Liveness session already complete",
			Code:  "SESSION_COMPLETE",
		})
	}

	if errors.Is(err, face.ErrFaceNotDetected) {
		h.logger.WithFields(fields).Warn("No face detected")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "No face detected in image",
			Code:  "FACE_NOT_DETECTED",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		body := ErrorResponse{
			Error: respErr.Err.Error(),
			Code:  respErr.Slug,
		}

		if respErr.Code >= fiber.StatusInternalServerError {
			body.TraceID = log.ErrorWithTraceID(fields, "Operation failed with upstream or model error")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}
		return c.Status(respErr.Code).JSON(body)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		h.logger.WithFields(fields).Warn("Request rejected")
		return c.Status(fiberErr.Code).JSON(ErrorResponse{
			Error: fiberErr.Message,
			Code:  "INPUT_INVALID",
		})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Code:    "INTERNAL_ERROR",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	details := err.Error()
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		details = validationErrs[0].Field() + " failed on " + validationErrs[0].Tag()
	}

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "Validation failed",
		Code:    "INPUT_INVALID",
		Details: details,
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx, requestID string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
	}).Warn("Request deadline exceeded")

	return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{
		Error: "Request timed out",
		Code:  "UPSTREAM_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
