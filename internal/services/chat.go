package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/stream"
	"go.uber.org/zap"
)

// ChatService talks to the document assistant.
type ChatService struct {
	api     *apiclient.Client
	decoder *stream.Decoder
}

// NewChatService creates a ChatService. logger may be nil.
func NewChatService(client *apiclient.Client, logger *zap.Logger) *ChatService {
	return &ChatService{api: client, decoder: stream.NewDecoder(logger)}
}

func chatRequest(message string, context *string) (api.ChatRequest, error) {
	if strings.TrimSpace(message) == "" {
		return api.ChatRequest{}, fmt.Errorf("message is required")
	}
	return api.ChatRequest{Message: message, Context: context}, nil
}

// Send asks a question and waits for the whole answer.
func (s *ChatService) Send(ctx context.Context, message string, context *string) (*api.ChatMessage, error) {
	req, err := chatRequest(message, context)
	if err != nil {
		return nil, err
	}
	var out api.ChatMessage
	if err := s.api.Post(ctx, "/chat/send", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamMessage asks a question and delivers the answer as it is produced.
// onChunk receives each appended text fragment; onDocuments, if set,
// receives every documents batch. A non-2xx response fails before any
// callback runs. The response body is released on every path.
func (s *ChatService) StreamMessage(
	ctx context.Context,
	message string,
	context *string,
	onChunk func(string),
	onDocuments func([]api.SourceDocument),
) (stream.Result, error) {
	req, err := chatRequest(message, context)
	if err != nil {
		return stream.Result{}, err
	}

	resp, err := s.api.Stream(ctx, http.MethodPost, "/chat/stream", req, nil)
	if err != nil {
		return stream.Result{}, err
	}

	return s.decoder.Consume(ctx, resp.Body, func(ev stream.Event) {
		switch ev.Kind {
		case stream.KindContent:
			if onChunk != nil {
				onChunk(ev.Text)
			}
		case stream.KindDocuments:
			if onDocuments != nil {
				onDocuments(ev.Documents)
			}
		}
	})
}

// History returns up to limit past messages; limit <= 0 uses the server default.
func (s *ChatService) History(ctx context.Context, limit int) (*api.ChatHistory, error) {
	params := apiclient.Params{"limit": nil}
	if limit > 0 {
		params["limit"] = limit
	}
	var out api.ChatHistory
	if err := s.api.Get(ctx, "/chat/history", &apiclient.RequestOptions{Params: params}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearHistory deletes the conversation.
func (s *ChatService) ClearHistory(ctx context.Context) error {
	return s.api.Delete(ctx, "/chat/history", nil, nil)
}
