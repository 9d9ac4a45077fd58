package inference

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"sync"
	"time"

	"FaceVerify/internal/entity"
	"FaceVerify/pkg/imaging"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

type ModelType string

const (
	DetectorModel ModelType = "DETECTOR"
	EmbedderModel ModelType = "EMBEDDER"
)

var (
	ErrModelUnavailable = errors.New("model service unavailable")
	ErrModelTimeout     = errors.New("model service timed out")
	ErrModelFailure     = errors.New("model service failed")
)

type IInference interface {
	DetectFaces(ctx context.Context, img *image.RGBA) ([]entity.FaceCandidate, error)
	Embed(ctx context.Context, face entity.FaceTensor) ([]float32, error)
	IsConnected(model ModelType) bool
	Reconnect(model ModelType) error
	CloseConnections()
}

type Config struct {
	DetectorURL  string
	EmbedderURL  string
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type detectRequest struct {
	Width  int    `msgpack:"w"`
	Height int    `msgpack:"h"`
	Data   []byte `msgpack:"d"`
}

type detectResponse struct {
	Detections []entity.FaceCandidate `msgpack:"detections"`
	Error      string                 `msgpack:"error"`
}

type embedRequest struct {
	Size int       `msgpack:"s"`
	Data []float32 `msgpack:"d"`
}

type embedResponse struct {
	Vector []float32 `msgpack:"v"`
	Error  string    `msgpack:"error"`
}

// modelConn is one websocket to one model. mu is held for a whole request and
// response exchange, so calls into the same model are serialized.
type modelConn struct {
	model ModelType
	url   string
	mu    sync.Mutex
	conn  *websocket.Conn
}

type inferenceClient struct {
	detector     *modelConn
	embedder     *modelConn
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *logrus.Logger
}

func New(cfg Config, logger *logrus.Logger) IInference {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	client := &inferenceClient{
		detector:     &modelConn{model: DetectorModel, url: cfg.DetectorURL},
		embedder:     &modelConn{model: EmbedderModel, url: cfg.EmbedderURL},
		pingInterval: cfg.PingInterval,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		log:          logger,
	}

	go client.connectInBackground(client.detector)
	go client.connectInBackground(client.embedder)

	return client
}

func (c *inferenceClient) connectInBackground(mc *modelConn) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.conn != nil {
		return
	}
	if err := c.dial(context.Background(), mc); err != nil {
		c.log.WithFields(logrus.Fields{
			"model": mc.model,
			"error": err.Error(),
		}).Warn("Initial connection to model service failed, will retry on demand")
		return
	}
	c.log.WithField("model", mc.model).Info("Connected to model service")
}

func (c *inferenceClient) get(model ModelType) *modelConn {
	switch model {
	case DetectorModel:
		return c.detector
	case EmbedderModel:
		return c.embedder
	default:
		return nil
	}
}

func (c *inferenceClient) IsConnected(model ModelType) bool {
	mc := c.get(model)
	if mc == nil {
		return false
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.conn != nil
}

func (c *inferenceClient) Reconnect(model ModelType) error {
	mc := c.get(model)
	if mc == nil {
		return fmt.Errorf("unknown model %q", model)
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	c.drop(mc)
	return c.dial(context.Background(), mc)
}

func (c *inferenceClient) CloseConnections() {
	for _, mc := range []*modelConn{c.detector, c.embedder} {
		mc.mu.Lock()
		c.drop(mc)
		mc.mu.Unlock()
	}
}

// dial must be called with mc.mu held.
func (c *inferenceClient) dial(ctx context.Context, mc *modelConn) error {
	if mc.url == "" {
		return fmt.Errorf("%w: url for %s not configured", ErrModelUnavailable, mc.model)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Proxy:            websocket.DefaultDialer.Proxy,
	}

	conn, _, err := dialer.DialContext(ctx, mc.url, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrModelUnavailable, mc.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithField("model", mc.model).Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	mc.conn = conn
	go c.keepAlive(mc, conn)

	return nil
}

// drop must be called with mc.mu held.
func (c *inferenceClient) drop(mc *modelConn) {
	if mc.conn != nil {
		mc.conn.Close()
		mc.conn = nil
	}
}

func (c *inferenceClient) keepAlive(mc *modelConn, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		mc.mu.Lock()
		if mc.conn != conn {
			mc.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"model": mc.model,
				"error": err.Error(),
			}).Warn("Ping failed, marking model connection as dead")
			c.drop(mc)
			mc.mu.Unlock()
			return
		}
		mc.mu.Unlock()
	}
}

// roundTrip sends one binary message and waits for one reply. Cancelling ctx
// unblocks the pending read or write by moving its deadline to now.
func (c *inferenceClient) roundTrip(ctx context.Context, mc *modelConn, payload []byte) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelTimeout, err)
	}

	if mc.conn == nil {
		if err := c.dial(ctx, mc); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrModelTimeout, ctx.Err())
			}
			return nil, err
		}
	}
	conn := mc.conn

	stop := context.AfterFunc(ctx, func() {
		now := time.Now()
		conn.SetWriteDeadline(now)
		conn.SetReadDeadline(now)
	})
	defer stop()

	conn.SetWriteDeadline(c.deadline(ctx, c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		c.drop(mc)
		return nil, c.classify(ctx, "send", err)
	}

	conn.SetReadDeadline(c.deadline(ctx, c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(mc)
		return nil, c.classify(ctx, "read", err)
	}

	if stop() {
		conn.SetReadDeadline(time.Time{})
		conn.SetWriteDeadline(time.Time{})
	}

	return message, nil
}

func (c *inferenceClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func (c *inferenceClient) classify(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelTimeout, op, ctx.Err())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrModelTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, op, err)
}

func (c *inferenceClient) DetectFaces(ctx context.Context, img *image.RGBA) ([]entity.FaceCandidate, error) {
	b := img.Bounds()
	payload, err := msgpack.Marshal(detectRequest{
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   imaging.RGB(img),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode detect request: %v", ErrModelFailure, err)
	}

	c.log.WithFields(logrus.Fields{
		"width":  b.Dx(),
		"height": b.Dy(),
	}).Debug("Sending frame to face detector")

	message, err := c.roundTrip(ctx, c.detector, payload)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := msgpack.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode detect response: %v", ErrModelFailure, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: detector: %s", ErrModelFailure, resp.Error)
	}

	return resp.Detections, nil
}

func (c *inferenceClient) Embed(ctx context.Context, face entity.FaceTensor) ([]float32, error) {
	if want := face.Size * face.Size * 3; face.Size <= 0 || len(face.Data) != want {
		return nil, fmt.Errorf("%w: face tensor has %d values for size %d", ErrModelFailure, len(face.Data), face.Size)
	}

	payload, err := msgpack.Marshal(embedRequest{
		Size: face.Size,
		Data: face.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode embed request: %v", ErrModelFailure, err)
	}

	message, err := c.roundTrip(ctx, c.embedder, payload)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := msgpack.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode embed response: %v", ErrModelFailure, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: embedder: %s", ErrModelFailure, resp.Error)
	}

	return resp.Vector, nil
}
