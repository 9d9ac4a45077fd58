package inference

import (
	"context"
	"errors"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FaceVerify/internal/entity"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// sidecar answers each binary message with reply(message). A nil reply result
// means the sidecar goes quiet until done is closed.
func sidecar(t *testing.T, done <-chan struct{}, reply func([]byte) []byte) string {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			out := reply(msg)
			if out == nil {
				select {
				case <-done:
				case <-time.After(5 * time.Second):
				}
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// pack runs on the sidecar goroutine, so it cannot fail the test directly.
func pack(v interface{}) []byte {
	b, err := msgpack.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func newClient(detector, embedder string) IInference {
	return New(Config{
		DetectorURL:  detector,
		EmbedderURL:  embedder,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: time.Second,
	}, quietLogger())
}

func TestDetectFaces(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	requests := make(chan detectRequest, 1)
	url := sidecar(t, done, func(msg []byte) []byte {
		var req detectRequest
		if err := msgpack.Unmarshal(msg, &req); err != nil {
			return pack(detectResponse{Error: err.Error()})
		}
		requests <- req
		return pack(detectResponse{Detections: []entity.FaceCandidate{
			{X: 1, Y: 2, Width: 3, Height: 4, Confidence: 0.98},
		}})
	})

	client := newClient(url, "")
	defer client.CloseConnections()

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	candidates, err := client.DetectFaces(context.Background(), img)
	if err != nil {
		t.Fatalf("DetectFaces() error = %v", err)
	}

	want := entity.FaceCandidate{X: 1, Y: 2, Width: 3, Height: 4, Confidence: 0.98}
	if len(candidates) != 1 || candidates[0] != want {
		t.Errorf("candidates = %+v, want [%+v]", candidates, want)
	}
	got := <-requests
	if got.Width != 4 || got.Height != 3 || len(got.Data) != 4*3*3 {
		t.Errorf("request = %dx%d with %d bytes", got.Width, got.Height, len(got.Data))
	}
	if !client.IsConnected(DetectorModel) {
		t.Error("detector not connected after a successful call")
	}
}

func TestEmbed(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	url := sidecar(t, done, func(msg []byte) []byte {
		var req embedRequest
		if err := msgpack.Unmarshal(msg, &req); err != nil {
			return pack(embedResponse{Error: err.Error()})
		}
		return pack(embedResponse{Vector: []float32{float32(req.Size), float32(len(req.Data))}})
	})

	client := newClient("", url)
	defer client.CloseConnections()

	vec, err := client.Embed(context.Background(), entity.FaceTensor{Size: 2, Data: make([]float32, 12)})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 2 || vec[1] != 12 {
		t.Errorf("vector = %v", vec)
	}
}

func TestEmbedRejectsMalformedTensor(t *testing.T) {
	client := newClient("", "")
	_, err := client.Embed(context.Background(), entity.FaceTensor{Size: 2, Data: make([]float32, 5)})
	if !errors.Is(err, ErrModelFailure) {
		t.Fatalf("Embed() error = %v, want %v", err, ErrModelFailure)
	}
}

func TestRemoteError(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	url := sidecar(t, done, func([]byte) []byte {
		return pack(detectResponse{Error: "model not loaded"})
	})

	client := newClient(url, "")
	defer client.CloseConnections()

	_, err := client.DetectFaces(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, ErrModelFailure) {
		t.Fatalf("DetectFaces() error = %v, want %v", err, ErrModelFailure)
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error %q lost the remote message", err)
	}
}

func TestContextDeadline(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	url := sidecar(t, done, func([]byte) []byte { return nil })

	client := newClient(url, "")
	defer client.CloseConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.DetectFaces(ctx, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, ErrModelTimeout) {
		t.Fatalf("DetectFaces() error = %v, want %v", err, ErrModelTimeout)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call returned after %v, want it bounded by the context", elapsed)
	}
}

func TestUnavailable(t *testing.T) {
	client := newClient("ws://127.0.0.1:1/detect", "")
	defer client.CloseConnections()

	_, err := client.DetectFaces(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("DetectFaces() error = %v, want %v", err, ErrModelUnavailable)
	}
	if client.IsConnected(DetectorModel) {
		t.Error("IsConnected() = true for an unreachable model")
	}

	if _, err := client.Embed(context.Background(), entity.FaceTensor{Size: 1, Data: make([]float32, 3)}); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Embed() without url error = %v, want %v", err, ErrModelUnavailable)
	}
}
