package livenessHandler

import (
	"context"
	"errors"
	"time"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/api/liveness"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/handlerUtil"
	"FaceVerify/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 30 * time.Second

func (h *LivenessHandler) HandleVerify(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req liveness.VerifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"challenge":  req.ChallengeValue(),
	}).Debug("Processing liveness verification request")

	data, err := h.readFrame(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	verdict, err := h.livenessService.Verify(c, data, req.ChallengeValue())
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "verify_liveness")
	}

	// An oracle timeout is already folded into the verdict.
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, verdict)
}

// readFrame leaves a missing image to the service, which checks the
// challenge first.
func (h *LivenessHandler) readFrame(ctx *fiber.Ctx) ([]byte, error) {
	data, err := handlerUtil.ReadImage(ctx, h.utils, "image")
	if errors.Is(err, face.ErrImageRequired) {
		return nil, nil
	}
	return data, err
}
