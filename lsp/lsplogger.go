package lsp

import (
	"context"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// clientCore is a zapcore.Core that forwards entries to the client via
// window/logMessage, so they show up in the editor's LSP log.
type clientCore struct {
	zapcore.LevelEnabler

	client  protocol.Client
	encoder zapcore.Encoder
	mu      *sync.Mutex

	// queue decouples logging from the RPC round trip.
	queue chan *protocol.LogMessageParams
}

// queueSize bounds buffered messages; entries beyond it are dropped.
const queueSize = 100

// NewClientLogger creates a logger that writes to fallback and to the client.
// Call the returned stop function once the connection is closed.
func NewClientLogger(client protocol.Client, fallback zapcore.Core, level zapcore.LevelEnabler) (*zap.Logger, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	core := &clientCore{
		LevelEnabler: level,
		client:       client,
		encoder: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey:     "msg",
			NameKey:        "logger",
			EncodeDuration: zapcore.StringDurationEncoder,
		}),
		mu:    &sync.Mutex{},
		queue: make(chan *protocol.LogMessageParams, queueSize),
	}

	go core.send(ctx)

	return zap.New(zapcore.NewTee(core, fallback)), cancel
}

func (c *clientCore) send(ctx context.Context) {
	for {
		select {
		case params := <-c.queue:
			// The client may already be gone.
			_ = c.client.LogMessage(ctx, params)
		case <-ctx.Done():
			return
		}
	}
}

// With implements zapcore.Core.
func (c *clientCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.encoder = c.encoder.Clone()

	for _, f := range fields {
		f.AddTo(clone.encoder)
	}

	return &clone
}

// Check implements zapcore.Core.
func (c *clientCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}

	return ce
}

// Write implements zapcore.Core.
func (c *clientCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	c.mu.Lock()
	buf, err := c.encoder.EncodeEntry(entry, fields)
	c.mu.Unlock()

	if err != nil {
		return err
	}

	params := &protocol.LogMessageParams{
		Type:    messageType(entry.Level),
		Message: strings.TrimSpace(buf.String()),
	}
	buf.Free()

	select {
	case c.queue <- params:
	default:
	}

	return nil
}

// Sync implements zapcore.Core.
func (c *clientCore) Sync() error {
	return nil
}

func messageType(level zapcore.Level) protocol.MessageType {
	switch level {
	case zapcore.DebugLevel:
		return protocol.MessageTypeLog
	case zapcore.InfoLevel:
		return protocol.MessageTypeInfo
	case zapcore.WarnLevel:
		return protocol.MessageTypeWarning
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return protocol.MessageTypeError
	default:
		return protocol.MessageTypeInfo
	}
}
