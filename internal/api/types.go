// Package api provides the request and response types of the document-management REST API.
package api

import "strings"

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// PageCount returns ceil(total/limit), or 0 when limit is not positive.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Message is the generic {"message": ...} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}

// User is the authenticated user's profile.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

// RefreshRequest is the request body for /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is the response body for /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HistoryEntry is one audit record of a document.
type HistoryEntry struct {
	ID      string    `json:"id"`
	Date    Timestamp `json:"date"`
	User    string    `json:"user"`
	Action  string    `json:"action"`
	Type    string    `json:"type"`
	Details string    `json:"details"`
}

// Document is a stored document with its metadata.
type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	Counterparty   *string        `json:"counterparty"`
	CounterpartyID *string        `json:"counterparty_id"`
	Date           *string        `json:"date"`
	Priority       string         `json:"priority"`
	Pages          int            `json:"pages"`
	Department     *string        `json:"department"`
	Status         string         `json:"status"`
	Size           *string        `json:"size"`
	UploadedBy     string         `json:"uploadedBy"`
	Path           string         `json:"path"`
	Version        int            `json:"version"`
	Description    *string        `json:"description"`
	History        []HistoryEntry `json:"history"`
	IsFavorite     bool           `json:"isFavorite"`
	IsArchived     bool           `json:"isArchived"`
	IsDeleted      bool           `json:"isDeleted"`
	Tags           []string       `json:"tags"`
	CreatedAt      Timestamp      `json:"created_at"`
	UpdatedAt      Timestamp      `json:"updated_at"`
}

// CreateDocumentRequest is the request body for POST /documents.
type CreateDocumentRequest struct {
	Title          string   `json:"title"`
	Type           string   `json:"type"`
	CounterpartyID *string  `json:"counterparty_id,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Department     *string  `json:"department,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// UpdateDocumentRequest is the request body for PATCH /documents/{id}.
// Only non-nil fields are sent.
type UpdateDocumentRequest struct {
	Title          *string  `json:"title,omitempty"`
	Type           *string  `json:"type,omitempty"`
	CounterpartyID *string  `json:"counterparty_id,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	Department     *string  `json:"department,omitempty"`
	Status         *string  `json:"status,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IsFavorite     *bool    `json:"is_favorite,omitempty"`
	IsArchived     *bool    `json:"is_archived,omitempty"`
}

// UploadMetadata are the optional form fields sent with an uploaded file.
type UploadMetadata struct {
	Title          string
	Type           string
	CounterpartyID string
	Priority       string
	Department     string
	Tags           []string
}

// Fields returns the multipart fields; unset values are nil and left out.
func (m UploadMetadata) Fields() map[string]any {
	fields := map[string]any{
		"title":           optional(m.Title),
		"type":            optional(m.Type),
		"counterparty_id": optional(m.CounterpartyID),
		"priority":        optional(m.Priority),
		"department":      optional(m.Department),
		"tags":            nil,
	}
	if len(m.Tags) > 0 {
		fields["tags"] = m.Tags
	}
	return fields
}

// SearchHit is one item of GET /documents/search.
type SearchHit struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Answer    string `json:"answer"`
	Available bool   `json:"available"`
}

// SearchResult is the response of GET /documents/search.
type SearchResult struct {
	Items  []SearchHit `json:"items"`
	Answer string      `json:"answer"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
	Pages  int         `json:"pages"`
}

// Counterparty is a business partner documents can reference.
type Counterparty struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	INN             string   `json:"inn"`
	KPP             *string  `json:"kpp"`
	Address         *string  `json:"address"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	DocCount        int      `json:"docCount"`
	TrustScore      int      `json:"trustScore"`
	ActiveContracts int      `json:"activeContracts"`
	LastInteraction *string  `json:"lastInteraction"`
	Type            []string `json:"type"`
}

// CounterpartyRequest is the body for creating or updating a counterparty.
type CounterpartyRequest struct {
	Name    string  `json:"name,omitempty"`
	INN     string  `json:"inn,omitempty"`
	KPP     *string `json:"kpp,omitempty"`
	Address *string `json:"address,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// CounterpartyDocument is the short document form listed under a counterparty.
type CounterpartyDocument struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Date   *string `json:"date"`
	Status string  `json:"status"`
}

// CounterpartyDocuments is the response of GET /counterparties/{id}/documents.
type CounterpartyDocuments struct {
	Items []CounterpartyDocument `json:"items"`
	Total int                    `json:"total"`
}

// DashboardMetrics are the headline numbers of the analytics dashboard.
type DashboardMetrics struct {
	TotalDocuments           int     `json:"total_documents"`
	HighPriorityCount        int     `json:"high_priority_count"`
	AvgProcessingTimeMinutes float64 `json:"avg_processing_time_minutes"`
	ProcessedPages           int     `json:"processed_pages"`
	StorageUsedGB            float64 `json:"storage_used_gb"`
	StorageTotalGB           float64 `json:"storage_total_gb"`
}

// WorkflowPoint is one bucket of the incoming/processed series.
type WorkflowPoint struct {
	Name      string `json:"name"`
	Incoming  int    `json:"incoming"`
	Processed int    `json:"processed"`
}

// TypeShare is one slice of the document-type distribution.
type TypeShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// FlowPoint is one bucket of the documents-flow series.
type FlowPoint struct {
	Name string `json:"name"`
	Docs int    `json:"docs"`
}

// Metrics is the combined analytics payload.
type Metrics struct {
	Dashboard DashboardMetrics `json:"dashboard"`
	Workflow  []WorkflowPoint  `json:"workflow"`
	Types     []TypeShare      `json:"types"`
	Flow      []FlowPoint      `json:"flow"`
}

// ChatRequest is the body of /chat/send and /chat/stream.
type ChatRequest struct {
	Message string  `json:"message"`
	Context *string `json:"context,omitempty"`
}

// SourceDocument is a document the assistant used to build an answer.
type SourceDocument struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	Path       *string `json:"path"`
	Available  bool    `json:"available"`
	Similarity float64 `json:"similarity"`
}

// ChatMessage is one message of a conversation.
type ChatMessage struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Timestamp Timestamp        `json:"timestamp"`
	Documents []SourceDocument `json:"documents,omitempty"`
}

// ChatHistory is the response of GET /chat/history.
type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

// Settings are the user's preferences.
type Settings struct {
	Theme                  string `json:"theme"`
	CompactList            bool   `json:"compact_list"`
	NotificationsEnabled   bool   `json:"notifications_enabled"`
	AutoArchiveDays        int    `json:"auto_archive_days"`
	LifecyclePolicyEnabled bool   `json:"lifecycle_policy_enabled"`
}

// ProfileUpdate is the body of PATCH /settings/profile.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// PasswordChange is the body of POST /settings/security.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// StorageInfo describes the object-storage quota.
type StorageInfo struct {
	TotalGB         float64 `json:"total_gb"`
	UsedGB          float64 `json:"used_gb"`
	AvailableGB     float64 `json:"available_gb"`
	UsagePercentage float64 `json:"usage_percentage"`
	BucketName      string  `json:"bucket_name"`
	Region          string  `json:"region"`
}

// StorageTypeUsage is the usage of one document type.
type StorageTypeUsage struct {
	Type   string  `json:"type"`
	SizeGB float64 `json:"size_gb"`
	Count  int     `json:"count"`
}

// StorageStats is the per-type storage breakdown.
type StorageStats struct {
	ByType []StorageTypeUsage `json:"by_type"`
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
