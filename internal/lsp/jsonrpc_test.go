package lsp

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"testing"
)

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)

	if err := writeMessage(&buf, msg1); err != nil {
		t.Fatalf("write message 1: %v", err)
	}
	if err := writeMessage(&buf, msg2); err != nil {
		t.Fatalf("write message 2: %v", err)
	}

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	got1, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read message 1: %v", err)
	}
	got2, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read message 2: %v", err)
	}

	if string(got1) != string(msg1) {
		t.Fatalf("unexpected message 1: %s", string(got1))
	}
	if string(got2) != string(msg2) {
		t.Fatalf("unexpected message 2: %s", string(got2))
	}
}

func TestJSONRPCFramingCountsBytes(t *testing.T) {
	var buf bytes.Buffer
	body := []byte(`{"text":"привет 🙂"}`)

	if err := writeMessage(&buf, body); err != nil {
		t.Fatalf("write message: %v", err)
	}
	header := buf.String()[:strings.Index(buf.String(), "\r\n")]
	want := "Content-Length: " + strconv.Itoa(len(body))
	if header != want {
		t.Fatalf("expected header %q, got %q", want, header)
	}

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	got, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("body mismatch: %s", string(got))
	}
}

func TestJSONRPCMissingContentLength(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("X-Custom: yes\r\n\r\n{}"))
	if _, err := readMessage(reader); err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestJSONRPCIgnoresExtraHeaders(t *testing.T) {
	body := `{"jsonrpc":"2.0"}`
	raw := "Content-Type: application/json\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	reader := bufio.NewReader(strings.NewReader(raw))
	got, err := readMessage(reader)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if string(got) != body {
		t.Fatalf("unexpected body: %s", string(got))
	}
}
