package livenessHandler

import (
	"context"

	"FaceVerify/internal/api/liveness"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/handlerUtil"
	"FaceVerify/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func (h *LivenessHandler) HandleCreateSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req liveness.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	session, err := h.livenessService.CreateSession(contextPkg.FromFiberCtx(ctx), req.ReferenceEmbedding)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, liveness.NewSessionResponse(session))
}

func (h *LivenessHandler) HandleVerifySession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	sessionID := ctx.Params("id")

	var req liveness.VerifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"challenge":  req.ChallengeValue(),
	}).Debug("Processing liveness session step")

	data, err := h.readFrame(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	step, err := h.livenessService.VerifySession(c, sessionID, data, req.ChallengeValue())
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "verify_session")
	}

	next, _ := step.Session.State.ExpectedChallenge()
	resp := liveness.SessionVerifyResponse{
		LivenessVerdict: step.Verdict,
		SessionID:       step.Session.ID,
		State:           step.Session.State,
		NextChallenge:   next,
		Complete:        next == "",
		ReferenceResult: step.Session.ReferenceResult,
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *LivenessHandler) HandleGetSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	session, err := h.livenessService.GetSession(contextPkg.FromFiberCtx(ctx), ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, liveness.NewSessionResponse(session))
}

func (h *LivenessHandler) HandleDeleteSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	if err := h.livenessService.DeleteSession(contextPkg.FromFiberCtx(ctx), ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}
