package faceHandler

import (
	"context"
	"time"

	"FaceVerify/internal/api/face"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/handlerUtil"
	"FaceVerify/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 10 * time.Second

func (h *FaceHandler) HandleDetect(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing face detection request")

	data, err := handlerUtil.ReadImage(ctx, h.utils, "image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	summary, err := h.faceService.Detect(c, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_face")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx, requestID)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, detectResponse(summary))
	}
}

func (h *FaceHandler) HandleEmbedding(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing face embedding request")

	data, err := handlerUtil.ReadImage(ctx, h.utils, "image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	result, err := h.faceService.Extract(c, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "extract_embedding")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx, requestID)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, face.EmbeddingResponse{
			Embedding:  result.Embedding,
			Dimensions: len(result.Embedding),
			Confidence: result.Confidence,
			Model:      face.EmbeddingModelName,
			Region:     result.Region,
			LowQuality: result.LowQuality,
		})
	}
}

func (h *FaceHandler) HandleCompare(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req face.CompareRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.faceService.Compare(req.Embedding1, req.Embedding2)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "compare_embeddings")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"distance":   result.EuclideanDistance,
		"match":      result.Match,
	}).Info("Embeddings compared")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, face.CompareResponse{ComparisonResult: result})
}
