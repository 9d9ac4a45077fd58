package faceHandler

import (
	"context"
	"time"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/entity"
	"FaceVerify/internal/middleware"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/handlerUtil"
	"FaceVerify/pkg/log"

	"github.com/gofiber/websocket/v2"
)

const maxReadTimeout = 60 * time.Second

func detectResponse(summary entity.DetectionSummary) face.DetectResponse {
	message := "No face detected"
	if summary.FaceDetected {
		message = "Face detected"
	}
	return face.DetectResponse{DetectionSummary: summary, Message: message}
}

func (h *FaceHandler) handleWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	fields := log.Fields{"request_id": requestID}

	h.log.WithFields(fields).Info("Face detection WebSocket client connected")
	defer h.log.WithFields(fields).Info("Face detection WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.WithFields(fields).Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.WithFields(fields).Errorf("Face WebSocket error: %v", err)
			}
			break
		}

		var frame []byte
		switch messageType {
		case websocket.BinaryMessage:
			frame = message
		case websocket.TextMessage:
			frame, err = h.utils.DecodeBase64Image(string(message))
			if err != nil {
				if !h.writeFrameResult(c, fields, face.StreamError{Error: "text frames must be base64 images", Code: "INPUT_INVALID"}) {
					return
				}
				continue
			}
		default:
			continue
		}

		var result interface{}
		summary, err := h.detectFrame(requestID, frame)
		if err != nil {
			h.log.WithFields(fields).Warnf("Error processing face frame: %v", err)
			result = face.StreamError{Error: err.Error(), Code: handlerUtil.Slug(err)}
		} else {
			result = detectResponse(summary)
		}

		if !h.writeFrameResult(c, fields, result) {
			return
		}
	}
}

func (h *FaceHandler) detectFrame(requestID string, frame []byte) (entity.DetectionSummary, error) {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), requestTimeout)
	defer cancel()
	return h.faceService.Detect(ctx, frame)
}

func (h *FaceHandler) writeFrameResult(c *websocket.Conn, fields log.Fields, v interface{}) bool {
	if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		h.log.WithFields(fields).Errorf("Error setting write deadline: %v", err)
		return false
	}
	if err := c.WriteJSON(v); err != nil {
		h.log.WithFields(fields).Errorf("Error writing JSON response: %v", err)
		return false
	}
	return true
}
