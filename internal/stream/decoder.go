// Package stream decodes server-sent-event style responses: newline-delimited
// frames where `data:` lines carry a JSON payload and an optional preceding
// `event:` line names the frame type. A blank line resets the current event
// name. Both upstream search APIs speak this framing over one chunked POST
// response.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	dataPrefix  = "data:"
	eventPrefix = "event:"

	// A data payload shorter than this cannot be a JSON object; such lines
	// are keep-alive noise and are skipped.
	minPayloadLen = 2
)

// Frame is one decoded payload, tagged with the event name in effect when its
// data line arrived. Event is empty for protocols that do not use event lines.
type Frame struct {
	Event string
	Data  json.RawMessage
}

// Decoder reads frames from a response body. It is driven by exactly one
// reader; Close may be called from any goroutine, including while a Next call
// is blocked on the underlying body.
type Decoder struct {
	body io.ReadCloser
	br   *bufio.Reader

	event string // current event name, reset on blank line
	eof   bool

	closeOnce sync.Once
	closeErr  error
}

// NewDecoder wraps a response body. The caller owns body's lifetime via Close.
func NewDecoder(body io.ReadCloser) *Decoder {
	return &Decoder{
		body: body,
		br:   bufio.NewReader(body),
	}
}

// Next returns the next well-formed frame. Malformed JSON on a data line is
// logged and skipped — one bad frame never aborts the stream. Returns io.EOF
// when the body is exhausted, or the underlying read error (which includes
// errors caused by Close being called mid-read).
func (d *Decoder) Next() (Frame, error) {
	for {
		if d.eof {
			return Frame{}, io.EOF
		}

		line, err := d.br.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return Frame{}, err
			}
			// A final line without a trailing newline is still a line.
			d.eof = true
			if strings.TrimSpace(line) == "" {
				return Frame{}, io.EOF
			}
		}

		line = strings.TrimRight(line, "\r\n")

		if strings.TrimSpace(line) == "" {
			d.event = ""
			continue
		}

		if strings.HasPrefix(line, eventPrefix) {
			d.event = strings.TrimSpace(line[len(eventPrefix):])
			continue
		}

		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := strings.TrimSpace(line[len(dataPrefix):])
		if len(payload) < minPayloadLen {
			continue
		}

		if !json.Valid([]byte(payload)) {
			slog.Warn("stream: skipping malformed frame", "payload", truncate(payload, 120))
			continue
		}

		return Frame{Event: d.event, Data: json.RawMessage(payload)}, nil
	}
}

// Close releases the underlying body. Idempotent and safe to call while a
// Next call is pending; the pending read returns an error and the decoder is
// done. Never panics.
func (d *Decoder) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.body.Close()
	})
	return d.closeErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
