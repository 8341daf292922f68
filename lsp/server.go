// Package lsp implements a Language Server Protocol server that reports parse
// failures together with the patches recovery would make.
package lsp

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

// Server handles LSP requests for one client.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	// Recovery settings, replaced when the workspace has its own config.
	cfgMu  sync.RWMutex
	cfg    *salvage.Config
	driver *recovery.Driver

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
	done          chan struct{}
	exitOnce      sync.Once
}

// Document represents an open document in the server.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string

	// Result is the parse of Content. Outcome is set only when it failed.
	Result  *salvage.Result
	Outcome *recovery.Outcome

	// RecoverErr is set when the recovery pass itself failed.
	RecoverErr error
}

// NewServer creates a new LSP server. A nil cfg uses salvage.DefaultConfig.
func NewServer(client protocol.Client, logger *zap.Logger, cfg *salvage.Config) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg == nil {
		cfg = salvage.DefaultConfig()
	}

	driver, err := recovery.NewDriverFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		client:    client,
		logger:    logger,
		cfg:       cfg,
		driver:    driver,
		documents: make(map[protocol.DocumentURI]*Document),
		done:      make(chan struct{}),
	}, nil
}

// Done is closed once the client sends exit.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.String("rootURI", string(params.RootURI)))

	switch {
	case params.RootURI != "":
		s.workspaceRoot = uriToPath(params.RootURI)
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}

	if s.workspaceRoot != "" {
		s.loadWorkspaceConfig(s.workspaceRoot)
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			// Quick fixes that apply recovery patches
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{
					protocol.QuickFix,
				},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "salvage-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// loadWorkspaceConfig swaps in the workspace's .salvage.yaml, if any.
func (s *Server) loadWorkspaceConfig(root string) {
	cfg, err := salvage.LoadConfig(root)
	if errors.Is(err, salvage.ErrConfigNotFound) {
		return
	}

	if err != nil {
		s.logger.Warn("Ignoring workspace config", zap.String("root", root), zap.Error(err))
		return
	}

	driver, err := recovery.NewDriverFromConfig(cfg, s.logger)
	if err != nil {
		s.logger.Warn("Ignoring workspace config", zap.String("root", root), zap.Error(err))
		return
	}

	s.cfgMu.Lock()
	s.cfg, s.driver = cfg, driver
	s.cfgMu.Unlock()

	s.logger.Info("Loaded workspace config",
		zap.String("dir", cfg.Dir),
		zap.String("parser", cfg.Parser),
		zap.Int("rounds", cfg.Recovery.Rounds))
}

func isConfigFile(path string) bool {
	return slices.Contains(salvage.DefaultConfigNames, filepath.Base(path))
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	s.exitOnce.Do(func() { close(s.done) })

	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}
	s.analyze(doc)

	// Hold lock only for document map update
	s.mu.Lock()
	s.documents[doc.URI] = doc
	s.mu.Unlock()

	// Publish outside the lock; the client may call back while we wait.
	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	start := time.Now()

	if len(params.ContentChanges) == 0 {
		return nil
	}

	s.mu.RLock()
	_, ok := s.documents[params.TextDocument.URI]
	s.mu.RUnlock()

	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - the last change holds the whole document.
	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.ContentChanges[len(params.ContentChanges)-1].Text,
	}
	s.analyze(doc)

	s.mu.Lock()
	s.documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(ctx, doc)

	s.logger.Debug("DidChange",
		zap.String("uri", string(doc.URI)),
		zap.Int32("version", doc.Version),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Debug("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	return nil
}

// analyze parses doc and, on failure, runs the configured recovery rounds.
func (s *Server) analyze(doc *Document) {
	s.cfgMu.RLock()
	driver, rounds := s.driver, s.cfg.Recovery.Rounds
	s.cfgMu.RUnlock()

	path := uriToPath(doc.URI)

	doc.Result = driver.Parser().Parse(path, doc.Content)
	if doc.Result.OK() {
		return
	}

	doc.Outcome, doc.RecoverErr = driver.RecoverRounds(path, doc.Content, doc.Result.Diagnostics, rounds)
	if doc.RecoverErr != nil {
		s.logger.Error("Recovery failed", zap.String("uri", string(doc.URI)), zap.Error(doc.RecoverErr))
	}
}

// getDocument returns a document by URI (read-locked).
func (s *Server) getDocument(u protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[u]

	return doc, ok
}

// uriToPath converts a file URI to a file system path. Other schemes are
// returned unchanged.
func uriToPath(u protocol.DocumentURI) string {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(u)
	}

	return uri.URI(u).Filename()
}
