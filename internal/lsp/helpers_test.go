package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func analyzeDoc(t *testing.T, uri, text string) *document {
	t.Helper()
	st := newDocumentStore(0)
	doc, err := st.Open(uri, 1, text)
	if err != nil {
		t.Fatalf("open %s: %v", uri, err)
	}
	return doc
}

// positionAt converts a byte offset in the document text into an LSP position.
func positionAt(t *testing.T, doc *document, offset int) position {
	t.Helper()
	if offset < 0 || offset > len(doc.Text) {
		t.Fatalf("offset %d out of range", offset)
	}
	return positionForOffsetInFile(doc.Analysis.File, uint32(offset))
}

// positionOf locates the needle in the document text and returns the LSP
// position skip bytes into it.
func positionOf(t *testing.T, doc *document, needle string, skip int) position {
	t.Helper()
	idx := strings.Index(doc.Text, needle)
	if idx < 0 {
		t.Fatalf("needle %q not found", needle)
	}
	return positionAt(t, doc, idx+skip)
}

func frameBodies(t *testing.T, bodies ...string) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, body := range bodies {
		if err := writeMessage(&buf, []byte(body)); err != nil {
			t.Fatalf("frame body: %v", err)
		}
	}
	return &buf
}

func decodeFrames(t *testing.T, data []byte) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(data))
	var out []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		out = append(out, msg)
	}
}

// runServer feeds framed bodies through a server and returns the decoded
// output messages along with Run's error.
func runServer(t *testing.T, bodies ...string) ([]rpcMessage, error) {
	t.Helper()
	var out bytes.Buffer
	server := NewServer(frameBodies(t, bodies...), &out, ServerOptions{})
	err := server.Run()
	return decodeFrames(t, out.Bytes()), err
}

func findResponse(t *testing.T, msgs []rpcMessage, id string) rpcMessage {
	t.Helper()
	for _, msg := range msgs {
		if msg.Method == "" && string(msg.ID) == id {
			return msg
		}
	}
	t.Fatalf("no response for id %s in %d messages", id, len(msgs))
	return rpcMessage{}
}

func publishedDiagnostics(t *testing.T, msgs []rpcMessage) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, msg := range msgs {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			t.Fatalf("decode publish params: %v", err)
		}
		out = append(out, params)
	}
	return out
}
