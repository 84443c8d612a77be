package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// ErrParse is returned by ReadMessage when a line is not valid JSON-RPC.
// The caller should answer with a ParseError response and keep reading.
type ErrParse struct {
	Err error
}

func (e *ErrParse) Error() string { return fmt.Sprintf("failed to parse message: %v", e.Err) }
func (e *ErrParse) Unwrap() error { return e.Err }

// Transport handles MCP communication over a line-oriented stream (stdio)
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex
}

// NewTransport creates a new stdio transport
func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// ReadMessage reads one JSON-RPC message. Blank lines are skipped.
// A final line without a trailing newline is still delivered before io.EOF.
func (t *Transport) ReadMessage() (*Request, error) {
	for {
		line, err := t.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}

		var req Request
		if uerr := json.Unmarshal(line, &req); uerr != nil {
			return nil, &ErrParse{Err: uerr}
		}
		return &req, nil
	}
}

// WriteResponse writes a JSON-RPC response
func (t *Transport) WriteResponse(resp *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(t.writer, "%s\n", data)
	return err
}
