// Command salvage-lsp is a Language Server Protocol server that shows parse
// failures and the recovery patches that would fix them.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/salvage"
	_ "github.com/rlch/salvage/javalite"
	"github.com/rlch/salvage/lsp"
)

var (
	configFlag = flag.String("config", "", "Path to .salvage.yaml (default: workspace config)")
	debugFlag  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if *debugFlag {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	// Logging goes to stderr; stdout carries the protocol.
	stderrCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	logger := zap.New(stderrCore)

	defer func() {
		_ = logger.Sync()
	}()

	var cfg *salvage.Config

	if *configFlag != "" {
		var err error

		cfg, err = salvage.LoadConfigFile(*configFlag)
		if err != nil {
			logger.Fatal("Loading config", zap.String("path", *configFlag), zap.Error(err))
		}
	}

	logger.Info("Starting salvage-lsp server")

	err := run(context.Background(), logger, stderrCore, level, os.Stdin, os.Stdout, cfg)
	if err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func run(
	ctx context.Context,
	logger *zap.Logger,
	stderrCore zapcore.Core,
	level zapcore.LevelEnabler,
	in io.Reader,
	out io.Writer,
	cfg *salvage.Config,
) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	client := protocol.ClientDispatcher(conn, logger)

	// Server logs also reach the editor's output panel.
	serverLogger, stop := lsp.NewClientLogger(client, stderrCore, level)
	defer stop()

	server, err := lsp.NewServer(client, serverLogger, cfg)
	if err != nil {
		return err
	}

	conn.Go(ctx, protocol.CancelHandler(protocol.ServerHandler(server, nil)))

	select {
	case <-conn.Done():
		return conn.Err()
	case <-server.Done():
		return conn.Close()
	}
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
