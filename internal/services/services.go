// Package services wraps the REST endpoints of the document-management API,
// one type per resource. Every method is a thin, typed call through
// apiclient.Client; state tracking lives in the async primitives.
package services

import (
	"net/url"

	"github.com/sirius-dms/dms-client/internal/apiclient"
	"go.uber.org/zap"
)

// Services bundles every resource service around one client.
type Services struct {
	Auth           *AuthService
	Documents      *DocumentService
	Counterparties *CounterpartyService
	Analytics      *AnalyticsService
	Chat           *ChatService
	Settings       *SettingsService
	Storage        *StorageService
}

// New creates all services. logger may be nil.
func New(client *apiclient.Client, logger *zap.Logger) *Services {
	return &Services{
		Auth:           NewAuthService(client),
		Documents:      NewDocumentService(client),
		Counterparties: NewCounterpartyService(client),
		Analytics:      NewAnalyticsService(client),
		Chat:           NewChatService(client, logger),
		Settings:       NewSettingsService(client),
		Storage:        NewStorageService(client),
	}
}

func resourcePath(prefix, id string, suffix ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
