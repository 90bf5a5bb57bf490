// Package lsp serves syntax diagnostics for a language over the Language
// Server Protocol.
package lsp

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dhamidi/pgen/language"
	"github.com/dhamidi/pgen/parser"
	"github.com/dhamidi/pgen/token"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "pgen"

type Server struct {
	lang    *language.Language
	handler protocol.Handler
	server  *server.Server
	version string
	log     commonlog.Logger

	mu   sync.Mutex
	docs map[protocol.DocumentUri]string
}

func NewServer(lang *language.Language, version string) *Server {
	s := &Server{
		lang:    lang,
		version: version,
		log:     commonlog.GetLogger("pgen.lsp"),
		docs:    make(map[protocol.DocumentUri]string),
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()

	publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		s.update(ctx, params.TextDocument.URI, *params.Text)
		return nil
	}
	s.mu.Lock()
	text, ok := s.docs[params.TextDocument.URI]
	s.mu.Unlock()
	if ok {
		s.update(ctx, params.TextDocument.URI, text)
	}
	return nil
}

// Document returns the last text received for uri.
func (s *Server) Document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[uri]
	return text, ok
}

func (s *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()

	publish(ctx, uri, s.Diagnostics(uri, text))
}

// Diagnostics parses text and reports the first problem found, if any.
func (s *Server) Diagnostics(uri protocol.DocumentUri, text string) []protocol.Diagnostic {
	_, err := s.lang.Parse(string(uri), []byte(text))
	if err == nil {
		return []protocol.Diagnostic{}
	}
	s.log.Debugf("%s: %s", uri, err)
	return []protocol.Diagnostic{toDiagnostic(err)}
}

func toDiagnostic(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	d := protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}

	var syntaxErr *parser.SyntaxError
	var internalErr *parser.InternalError
	switch {
	case errors.As(err, &syntaxErr) && syntaxErr.ErrorLeaf != nil:
		leaf := syntaxErr.ErrorLeaf
		d.Range = toRange(leaf.Pos, leaf.End())
		d.Message = strings.TrimPrefix(syntaxErr.Message, "SyntaxError: ")
		if len(syntaxErr.Expected) > 0 {
			d.Message += fmt.Sprintf(" (expected %s)", strings.Join(syntaxErr.Expected, ", "))
		}
	case errors.As(err, &internalErr):
		end := token.Token{Value: internalErr.Value, Start: internalErr.Start}.End()
		d.Range = toRange(end, end)
		d.Message = internalErr.Msg
	}
	return d
}

// toRange converts parser positions to protocol positions. Columns are
// byte offsets, which match UTF-16 offsets for ASCII text.
func toRange(start, end token.Position) protocol.Range {
	return protocol.Range{
		Start: toPosition(start),
		End:   toPosition(end),
	}
}

func toPosition(p token.Position) protocol.Position {
	line := p.Line - 1
	if line < 0 {
		line = 0
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(p.Column),
	}
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
