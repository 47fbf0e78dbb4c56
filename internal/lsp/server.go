package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"

	"drift/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after shutdown+exit.
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

var nullID = json.RawMessage("null")

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Logger         *Logger
	MaxDiagnostics int
}

// providerFunc handles one decoded message against the current store.
type providerFunc func(*Server, *rpcMessage) error

// Server owns the document store and drives the read-dispatch-write loop
// over stdio JSON-RPC. Dispatch is single-threaded: one message is fully
// handled before the next frame is read, so the store needs no locks.
type Server struct {
	in  *bufio.Reader
	out *bufio.Writer
	log *Logger

	state     serverState
	store     *documentStore
	providers map[string]providerFunc
	cancelled map[string]struct{}
	answered  []string

	workspaceRoot string
}

// NewServer constructs an LSP server reading from in and writing to out.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(io.Discard, LogSilent, false)
	}
	s := &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		log:       logger,
		state:     stateUninitialized,
		store:     newDocumentStore(opts.MaxDiagnostics),
		cancelled: make(map[string]struct{}),
	}
	s.providers = map[string]providerFunc{
		"textDocument/didOpen":        (*Server).handleDidOpen,
		"textDocument/didChange":      (*Server).handleDidChange,
		"textDocument/didClose":       (*Server).handleDidClose,
		"textDocument/hover":          (*Server).handleHover,
		"textDocument/definition":     (*Server).handleDefinition,
		"textDocument/completion":     (*Server).handleCompletion,
		"textDocument/documentSymbol": (*Server).handleDocumentSymbol,
		"textDocument/references":     (*Server).handleReferences,
		"workspace/symbol":            (*Server).handleWorkspaceSymbol,
	}
	return s
}

// Run serves messages until exit or a transport failure. It returns ErrExit
// after a clean shutdown/exit pair and ErrExitWithoutShutdown when the
// client skipped shutdown; end-of-stream returns nil.
func (s *Server) Run() error {
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Infof("input closed, shutting down")
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Errorf("unparsable message: %v", err)
			if err := s.sendError(nullID, codeParseError, "parse error"); err != nil {
				return err
			}
			continue
		}
		if msg.Method == "" {
			// Ответ клиента; сервер не шлёт запросов, игнорируем.
			continue
		}
		if err := s.dispatch(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(msg *rpcMessage) error {
	if msg.isRequest() {
		// Повторное использование id обнуляет историю ответа.
		s.forgetAnswered(idKey(msg.ID))
	}
	err := s.route(msg)
	if msg.isRequest() && err == nil {
		s.noteAnswered(msg.ID)
	}
	return err
}

func (s *Server) route(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit()
	case "$/cancelRequest":
		return s.handleCancel(msg)
	}

	switch s.state {
	case stateUninitialized, stateInitializing:
		if msg.isRequest() {
			return s.sendError(msg.ID, codeServerNotInitialized, "server not initialized")
		}
		s.log.Warnf("dropping %q before initialization", msg.Method)
		return nil
	case stateShuttingDown, stateExited:
		if msg.isRequest() {
			return s.sendError(msg.ID, codeInvalidRequest, "server is shutting down")
		}
		s.log.Warnf("dropping %q during shutdown", msg.Method)
		return nil
	}

	if msg.isRequest() && s.takeCancelled(msg.ID) {
		return s.sendError(msg.ID, codeRequestCancelled, "request cancelled")
	}

	if handler, ok := s.providers[msg.Method]; ok {
		return handler(s, msg)
	}
	if msg.isRequest() {
		return s.sendError(msg.ID, codeMethodNotFound, "method not found")
	}
	s.log.Debugf("ignoring notification %q", msg.Method)
	return nil
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	if s.state != stateUninitialized {
		return s.sendError(msg.ID, codeInvalidRequest, "server already initialized")
	}
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.workspaceRoot = root
	s.state = stateInitializing
	s.log.Infof("initialize: root=%q", root)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1, // full document sync
			},
			HoverProvider:           true,
			DefinitionProvider:      true,
			CompletionProvider:      &completionOptions{},
			DocumentSymbolProvider:  true,
			ReferencesProvider:      true,
			WorkspaceSymbolProvider: true,
		},
		ServerInfo: &serverInfo{Name: "drift-lsp", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleInitialized(msg *rpcMessage) error {
	if s.state != stateInitializing {
		s.log.Warnf("initialized notification in state %s", s.state)
		return nil
	}
	s.state = stateRunning
	return nil
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	switch s.state {
	case stateUninitialized, stateInitializing:
		return s.sendError(msg.ID, codeServerNotInitialized, "server not initialized")
	case stateShuttingDown, stateExited:
		return s.sendError(msg.ID, codeInvalidRequest, "server is shutting down")
	}
	s.state = stateShuttingDown
	s.log.Infof("shutdown requested")
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleExit() error {
	clean := s.state == stateShuttingDown
	s.state = stateExited
	if clean {
		return ErrExit
	}
	s.log.Warnf("exit received without shutdown")
	return ErrExitWithoutShutdown
}

func (s *Server) handleCancel(msg *rpcMessage) error {
	var params cancelParams
	if len(msg.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warnf("malformed $/cancelRequest: %v", err)
		return nil
	}
	if len(params.ID) == 0 {
		return nil
	}
	key := idKey(params.ID)
	if s.wasAnswered(key) {
		// Обычная гонка: ответ уже ушёл, отмена опоздала. Пометка
		// отравила бы следующий запрос, переиспользующий этот id.
		s.log.Debugf("late cancel for answered request %s", key)
		return nil
	}
	s.cancelled[key] = struct{}{}
	return nil
}

// answeredRingSize bounds how many answered request ids are remembered
// for late-cancel detection.
const answeredRingSize = 64

// noteAnswered records a request id the server has responded to.
func (s *Server) noteAnswered(id json.RawMessage) {
	s.answered = append(s.answered, idKey(id))
	if len(s.answered) > answeredRingSize {
		s.answered = s.answered[1:]
	}
}

func (s *Server) wasAnswered(key string) bool {
	for _, k := range s.answered {
		if k == key {
			return true
		}
	}
	return false
}

func (s *Server) forgetAnswered(key string) {
	for i, k := range s.answered {
		if k == key {
			s.answered = append(s.answered[:i], s.answered[i+1:]...)
			return
		}
	}
}

// takeCancelled reports and clears the cancellation mark for a request id.
func (s *Server) takeCancelled(id json.RawMessage) bool {
	key := idKey(id)
	if _, ok := s.cancelled[key]; ok {
		delete(s.cancelled, key)
		return true
	}
	return false
}

// cancelCheck returns a poll function providers call at bounded intervals
// during multi-document scans.
func (s *Server) cancelCheck(id json.RawMessage) func() bool {
	key := idKey(id)
	return func() bool {
		_, ok := s.cancelled[key]
		return ok
	}
}

func idKey(id json.RawMessage) string {
	return string(id)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warnf("malformed didOpen: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	doc, err := s.store.Open(uri, params.TextDocument.Version, params.TextDocument.Text)
	if err != nil {
		s.log.Warnf("didOpen %s: %v", uri, err)
		return nil
	}
	s.log.Debugf("didOpen %s version=%d", uri, doc.Version)
	return s.publishDiagnostics(doc)
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warnf("malformed didChange: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	prev, ok := s.store.Get(uri)
	if !ok {
		s.log.Warnf("didChange %s: %v", uri, errNotOpen)
		return nil
	}
	text := applyChanges(prev.Text, params.ContentChanges)
	doc, err := s.store.Apply(uri, params.TextDocument.Version, text)
	if err != nil {
		if errors.Is(err, errStaleVersion) {
			s.log.Warnf("didChange %s: stale version %d (have %d)",
				uri, params.TextDocument.Version, prev.Version)
			return nil
		}
		s.log.Warnf("didChange %s: %v", uri, err)
		return nil
	}
	s.log.Debugf("didChange %s version=%d", uri, doc.Version)
	return s.publishDiagnostics(doc)
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warnf("malformed didClose: %v", err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	if err := s.store.Close(uri); err != nil {
		s.log.Warnf("didClose %s: %v", uri, err)
		return nil
	}
	// Пустой список снимает подсветку в редакторе.
	return s.sendPublish(uri, nil)
}

func (s *Server) publishDiagnostics(doc *document) error {
	list := diagnosticsForBag(doc.Analysis.Bag, doc.Analysis.File)
	return s.sendPublish(doc.URI, list)
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	if len(id) == 0 {
		id = nullID
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
