// Package stream decodes the chat endpoint's server-sent event stream.
//
// Each event is a single line "data: <payload>". The payload is either the
// sentinel [DONE] or a JSON object carrying a "content" fragment and/or a
// "documents" list. Other lines are ignored and malformed JSON is skipped.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/logging"
	"go.uber.org/zap"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Kind tags an Event.
type Kind string

const (
	KindContent   Kind = "content"
	KindDocuments Kind = "documents"
	KindDone      Kind = "done"
)

// Event is one decoded stream event. Text is set for KindContent,
// Documents for KindDocuments.
type Event struct {
	Kind      Kind
	Text      string
	Documents []api.SourceDocument
}

// Handler receives events in stream order.
type Handler func(Event)

// Result summarizes a consumed stream.
type Result struct {
	// Text is every content fragment concatenated.
	Text string
	// Documents is the last documents batch received, if any.
	Documents []api.SourceDocument
	// Done reports whether the [DONE] sentinel was seen.
	Done bool
}

type frame struct {
	Content   *string               `json:"content"`
	Documents *[]api.SourceDocument `json:"documents"`
}

// Decoder consumes event streams.
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a Decoder. A nil logger disables logging.
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{logger: logging.OrNop(logger)}
}

// Consume is NewDecoder(nil).Consume.
func Consume(ctx context.Context, body io.ReadCloser, handle Handler) (Result, error) {
	return NewDecoder(nil).Consume(ctx, body, handle)
}

// Consume reads body until [DONE], end of input, an error or cancellation of
// ctx, calling handle for every event. body is closed on every path.
// Lines are split on raw bytes, so a multi-byte character split across
// network reads is never torn apart.
func (d *Decoder) Consume(ctx context.Context, body io.ReadCloser, handle Handler) (Result, error) {
	defer body.Close()
	if handle == nil {
		handle = func(Event) {}
	}

	// Unblocks a pending Read when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer stop()

	var (
		res    Result
		text   strings.Builder
		reader = bufio.NewReader(body)
	)

	for {
		if err := apiclient.Cancelled(ctx); err != nil {
			res.Text = text.String()
			return res, err
		}

		line, readErr := reader.ReadBytes('\n')
		for _, ev := range d.parseLine(line) {
			switch ev.Kind {
			case KindDone:
				res.Done = true
				res.Text = text.String()
				handle(ev)
				return res, nil
			case KindContent:
				text.WriteString(ev.Text)
			case KindDocuments:
				res.Documents = ev.Documents
			}
			handle(ev)
		}

		if readErr != nil {
			res.Text = text.String()
			if cerr := apiclient.Cancelled(ctx); cerr != nil {
				return res, cerr
			}
			if errors.Is(readErr, io.EOF) {
				return res, nil
			}
			return res, fmt.Errorf("failed to read event stream: %w", readErr)
		}
	}
}

// parseLine decodes one raw line into zero or more events. A frame with
// both fields yields its content event first.
func (d *Decoder) parseLine(raw []byte) []Event {
	line := bytes.TrimSuffix(bytes.TrimSuffix(raw, []byte("\n")), []byte("\r"))
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return nil
	}
	payload := line[len(dataPrefix):]
	if string(payload) == doneSentinel {
		return []Event{{Kind: KindDone}}
	}

	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		d.logger.Debug("skipping malformed stream event", zap.Error(err), zap.Int("bytes", len(payload)))
		return nil
	}

	var events []Event
	if f.Content != nil {
		events = append(events, Event{Kind: KindContent, Text: *f.Content})
	}
	if f.Documents != nil {
		events = append(events, Event{Kind: KindDocuments, Documents: *f.Documents})
	}
	return events
}
