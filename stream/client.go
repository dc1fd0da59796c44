package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/fusionstream/config"
	"github.com/c360/fusionstream/errors"
	"github.com/c360/fusionstream/metric"
	"github.com/c360/fusionstream/pkg/retry"
	"github.com/c360/fusionstream/pkg/tlsutil"
	"github.com/c360/fusionstream/telemetry"
)

// Client owns the transport lifecycle for the telemetry stream. It manages
// a single long-lived WebSocket link with bounded automatic retry, buffers
// outbound messages across disconnects, and fans validated inbound payloads
// out to registered observers.
//
// Legal state transitions:
//
//	Connecting → Open                 handshake success
//	Connecting → Closed               handshake failure
//	Open → Closed                     link loss
//	Closed → ReconnectScheduled       retries remain
//	Closed → Exhausted                retries exhausted
//	ReconnectScheduled → Connecting   timer fires
//	any → Closed                      manual disconnect
type Client struct {
	cfg    config.StreamConfig
	logger *slog.Logger
	dialer *websocket.Dialer

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	budget         *retry.Budget
	reconnectTimer *time.Timer
	// gen invalidates in-flight dials, read loops, and fired-but-unrun
	// reconnect timers after a manual disconnect. Canceling a timer that
	// already fired is therefore a safe no-op.
	gen      uint64
	queue    [][]byte
	shutdown bool

	// writeMu serializes writes; gorilla connections do not support
	// concurrent writers.
	writeMu sync.Mutex

	// notifyMu keeps observer delivery in registration order across
	// concurrent state transitions.
	notifyMu         sync.Mutex
	statusObservers  []func(State)
	sampleObservers  []func(*telemetry.Sample)
	controlObservers []func(*telemetry.Control)

	wg        sync.WaitGroup
	startTime time.Time

	messagesReceived atomic.Int64
	messagesSent     atomic.Int64
	malformedCount   atomic.Int64
	reconnectCount   atomic.Int64

	metrics *Metrics
}

// Stats is a point-in-time snapshot of client activity.
type Stats struct {
	Endpoint         string `json:"endpoint"`
	Connected        bool   `json:"connected"`
	MessagesReceived int64  `json:"messages_received"`
	MessagesSent     int64  `json:"messages_sent"`
	MalformedCount   int64  `json:"malformed_count"`
	ReconnectCount   int64  `json:"reconnect_count"`
}

// NewClient creates a stream client for the configured endpoint. The client
// does not dial until Connect is called. logger may be nil; registry may be
// nil to disable metrics.
func NewClient(cfg config.StreamConfig, logger *slog.Logger, registry *metric.Registry) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig,
			"stream", "NewClient", "validate endpoint")
	}
	if logger == nil {
		logger = slog.Default()
	}
	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}

	tlsConfig, err := tlsutil.LoadClientTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			TLSClientConfig:  tlsConfig,
		},
		state:     StateClosed,
		budget:    retry.NewBudget(cfg.ReconnectInterval, cfg.MaxRetries),
		startTime: time.Now(),
		metrics:   newMetrics(registry, "stream"),
	}, nil
}

// OnStatus registers an observer for state transitions. Observers are
// delivered in registration order; a panicking observer is recovered and
// does not prevent delivery to later observers.
func (c *Client) OnStatus(fn func(State)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.statusObservers = append(c.statusObservers, fn)
}

// OnSample registers an observer for validated telemetry samples.
func (c *Client) OnSample(fn func(*telemetry.Sample)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.sampleObservers = append(c.sampleObservers, fn)
}

// OnControl registers an observer for inbound control messages.
func (c *Client) OnControl(fn func(*telemetry.Control)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.controlObservers = append(c.controlObservers, fn)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect initiates the transport handshake. Calling while already
// Connecting or Open is a no-op. The handshake runs on its own goroutine;
// the resulting transition is delivered to status observers.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.shutdown || c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return
	}
	if c.state == StateExhausted {
		// A manual reconnect grants a fresh retry budget.
		c.budget.Reset()
	}
	c.cancelReconnectTimerLocked()
	c.setStateLocked(StateConnecting)
	gen := c.gen
	c.mu.Unlock()

	c.notifyStatus(StateConnecting)

	c.wg.Add(1)
	go c.dial(ctx, gen)
}

// Send transmits the payload immediately when the link is open; otherwise
// it appends the payload to the outbound queue, to be flushed FIFO after
// the next successful handshake. Send never blocks on the network state
// and never returns an error for a disconnected link.
func (c *Client) Send(payload []byte) {
	c.mu.Lock()
	// Route through the queue while it is non-empty so queued messages
	// keep their FIFO position ahead of new ones.
	if c.state != StateOpen || c.conn == nil || len(c.queue) > 0 {
		c.queue = append(c.queue, payload)
		c.updateQueueGaugeLocked()
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.mu.Unlock()

	if err := c.write(conn, payload); err != nil {
		// The read loop will observe the link loss; keep the payload.
		c.mu.Lock()
		c.queue = append(c.queue, payload)
		c.updateQueueGaugeLocked()
		c.mu.Unlock()
	}
}

// SendCommand builds and sends a fault-injection command envelope.
func (c *Client) SendCommand(faultType string) error {
	payload, err := telemetry.EncodeFaultInjection(faultType)
	if err != nil {
		return err
	}
	c.Send(payload)
	return nil
}

// Disconnect cancels any pending reconnect timer, closes the active link,
// and moves to Closed. It is a pause, not a destroy: a later Connect or
// Resume is legal.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.cancelReconnectTimerLocked()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	changed := c.state != StateClosed
	if changed {
		c.setStateLocked(StateClosed)
	}
	c.mu.Unlock()

	if changed {
		c.notifyStatus(StateClosed)
	}
}

// Resume handles the external became-active-again signal. It triggers an
// immediate reconnect with a fresh retry budget, but only from Closed or
// Exhausted; in ReconnectScheduled a retry is already pending and a second
// attempt would race it.
func (c *Client) Resume(ctx context.Context) {
	c.mu.Lock()
	if c.shutdown || (c.state != StateClosed && c.state != StateExhausted) {
		c.mu.Unlock()
		return
	}
	c.budget.Reset()
	c.mu.Unlock()

	c.logger.Info("resume signal received, reconnecting", "endpoint", c.cfg.Endpoint)
	c.Connect(ctx)
}

// Close shuts the client down permanently and waits for internal
// goroutines to finish, up to timeout.
func (c *Client) Close(timeout time.Duration) error {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()

	c.Disconnect()

	doneCh := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
		return nil
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"stream", "Close", "wait for goroutines")
	}
}

// Stats returns a snapshot of client activity counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	connected := c.state == StateOpen
	c.mu.Unlock()

	return Stats{
		Endpoint:         c.cfg.Endpoint,
		Connected:        connected,
		MessagesReceived: c.messagesReceived.Load(),
		MessagesSent:     c.messagesSent.Load(),
		MalformedCount:   c.malformedCount.Load(),
		ReconnectCount:   c.reconnectCount.Load(),
	}
}

// QueueDepth returns the number of outbound messages waiting for the next
// open link.
func (c *Client) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Uptime returns how long the client has existed.
func (c *Client) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// dial performs the handshake and either enters Open or schedules a retry.
func (c *Client) dial(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.Endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	if gen != c.gen || c.state != StateConnecting {
		// Disconnected while the handshake was in flight.
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}

	if err != nil {
		c.setStateLocked(StateClosed)
		next := c.scheduleReconnectLocked(ctx)
		c.mu.Unlock()

		c.logger.Warn("websocket handshake failed",
			"endpoint", c.cfg.Endpoint, "error", err)
		c.notifyStatus(StateClosed)
		if next != StateClosed {
			c.notifyStatus(next)
		}
		return
	}

	c.conn = conn
	c.budget.Reset()
	c.setStateLocked(StateOpen)
	hasQueued := len(c.queue) > 0
	c.mu.Unlock()

	c.logger.Info("websocket connection established", "endpoint", c.cfg.Endpoint)
	if c.metrics != nil {
		c.metrics.connectsTotal.Inc()
	}
	c.notifyStatus(StateOpen)

	if hasQueued {
		c.flushQueue(conn, gen)
	}

	c.wg.Add(1)
	go c.readLoop(ctx, conn, gen)
}

// readLoop reads frames until the link drops, dispatching each payload.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, gen uint64) {
	defer c.wg.Done()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleLinkLoss(ctx, conn, gen, err)
			return
		}
		c.dispatchPayload(raw)
	}
}

// handleLinkLoss transitions Open → Closed and schedules a retry, unless
// the loss belongs to a link that was already replaced or shut down.
func (c *Client) handleLinkLoss(ctx context.Context, conn *websocket.Conn, gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen || c.conn != conn {
		// Stale loop; Disconnect already handled this link.
		c.mu.Unlock()
		return
	}
	_ = conn.Close()
	c.conn = nil
	c.setStateLocked(StateClosed)
	next := c.scheduleReconnectLocked(ctx)
	c.mu.Unlock()

	c.logger.Warn("websocket link lost",
		"endpoint", c.cfg.Endpoint, "error", cause)
	c.notifyStatus(StateClosed)
	if next != StateClosed {
		c.notifyStatus(next)
	}
}

// scheduleReconnectLocked moves Closed → ReconnectScheduled when retry
// budget remains, or Closed → Exhausted otherwise. Caller holds c.mu and
// is responsible for notifying the returned state when it differs from
// StateClosed.
func (c *Client) scheduleReconnectLocked(ctx context.Context) State {
	if c.shutdown || ctx.Err() != nil {
		return StateClosed
	}

	delay, ok := c.budget.Next()
	if !ok {
		c.setStateLocked(StateExhausted)
		c.logger.Warn("reconnect retries exhausted",
			"endpoint", c.cfg.Endpoint, "retries", c.budget.Used())
		return StateExhausted
	}

	c.reconnectCount.Add(1)
	if c.metrics != nil {
		c.metrics.reconnectAttempts.Inc()
	}
	c.setStateLocked(StateReconnectScheduled)

	gen := c.gen
	c.logger.Info("reconnect scheduled",
		"attempt", c.budget.Used(), "max_retries", c.cfg.MaxRetries,
		"backoff", delay)
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.onReconnectTimer(ctx, gen)
	})
	return StateReconnectScheduled
}

// onReconnectTimer fires the scheduled retry. The generation guard makes
// a timer that fired concurrently with Disconnect a no-op.
func (c *Client) onReconnectTimer(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateReconnectScheduled {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = nil
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.notifyStatus(StateConnecting)

	c.wg.Add(1)
	go c.dial(ctx, gen)
}

// cancelReconnectTimerLocked stops a pending retry timer. Stopping a timer
// that already fired is safe; the generation guard in onReconnectTimer
// keeps the fired callback from acting.
func (c *Client) cancelReconnectTimerLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

func (c *Client) setStateLocked(s State) {
	c.state = s
	c.metrics.setState(s)
}

func (c *Client) updateQueueGaugeLocked() {
	if c.metrics != nil {
		c.metrics.outboundQueued.Set(float64(len(c.queue)))
	}
}

// flushQueue drains the outbound queue FIFO onto a freshly opened link.
// On a write error the payload goes back to the front; the read loop will
// notice the dead link and the queue survives for the next reconnect.
func (c *Client) flushQueue(conn *websocket.Conn, gen uint64) {
	for {
		c.mu.Lock()
		if gen != c.gen || c.conn != conn || len(c.queue) == 0 {
			c.updateQueueGaugeLocked()
			c.mu.Unlock()
			return
		}
		payload := c.queue[0]
		c.queue = c.queue[1:]
		c.updateQueueGaugeLocked()
		c.mu.Unlock()

		if err := c.write(conn, payload); err != nil {
			c.mu.Lock()
			c.queue = append([][]byte{payload}, c.queue...)
			c.updateQueueGaugeLocked()
			c.mu.Unlock()
			c.logger.Warn("outbound flush interrupted", "error", err)
			return
		}
	}
}

// write sends one text frame, serialized against concurrent writers.
func (c *Client) write(conn *websocket.Conn, payload []byte) error {
	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		return errors.WrapTransient(err, "stream", "write", "write frame")
	}
	c.messagesSent.Add(1)
	if c.metrics != nil {
		c.metrics.messagesSent.Inc()
	}
	return nil
}

// dispatchPayload classifies one inbound frame and notifies observers.
// Malformed input is discarded with a diagnostic; it never stops the
// stream and never propagates as a sample.
func (c *Client) dispatchPayload(raw []byte) {
	kind, sample, ctrl, err := telemetry.Classify(raw)
	switch kind {
	case telemetry.KindSample:
		c.messagesReceived.Add(1)
		if c.metrics != nil {
			c.metrics.samplesReceived.Inc()
		}
		c.notifySample(sample)

	case telemetry.KindControl:
		c.messagesReceived.Add(1)
		if c.metrics != nil {
			c.metrics.controlReceived.WithLabelValues(ctrl.Type).Inc()
		}
		if ctrl.Type == telemetry.ControlConnection {
			c.logger.Info("connection status message", "status", ctrl.Status)
		}
		c.notifyControl(ctrl)

	default:
		c.malformedCount.Add(1)
		if c.metrics != nil {
			c.metrics.malformedPayloads.Inc()
		}
		c.logger.Warn("malformed payload discarded", "error", err)
	}
}

// notifyStatus delivers a state transition to observers in registration
// order with panic isolation.
func (c *Client) notifyStatus(s State) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range c.statusObservers {
		c.safeNotify(func() { fn(s) })
	}
}

func (c *Client) notifySample(sample *telemetry.Sample) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range c.sampleObservers {
		c.safeNotify(func() { fn(sample) })
	}
}

func (c *Client) notifyControl(ctrl *telemetry.Control) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range c.controlObservers {
		c.safeNotify(func() { fn(ctrl) })
	}
}

// safeNotify recovers observer panics so one failing observer cannot
// prevent delivery to the rest or corrupt client state.
func (c *Client) safeNotify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("observer panic recovered", "panic", r)
		}
	}()
	fn()
}
