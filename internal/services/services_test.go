package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method      string
	Path        string
	Query       string
	Body        []byte
	Auth        string
	ContentType string
}

type fakeBackend struct {
	router *gin.Engine
	server *httptest.Server

	mu       sync.Mutex
	requests []recorded
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := &fakeBackend{router: gin.New()}
	b.router.Use(func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		b.mu.Lock()
		b.requests = append(b.requests, recorded{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Query:       c.Request.URL.RawQuery,
			Body:        body,
			Auth:        c.GetHeader("Authorization"),
			ContentType: c.GetHeader("Content-Type"),
		})
		b.mu.Unlock()
		c.Next()
	})
	b.server = httptest.NewServer(b.router)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) api() *gin.RouterGroup {
	return b.router.Group("/api/v1")
}

func (b *fakeBackend) last(t *testing.T) recorded {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.requests, "no request reached the backend")
	return b.requests[len(b.requests)-1]
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func newServices(t *testing.T, b *fakeBackend) *Services {
	t.Helper()
	store := credential.NewMemoryStore()
	require.NoError(t, store.SetToken(context.Background(), "tok"))
	client, err := apiclient.New(apiclient.Config{
		BaseURL: b.server.URL + "/api/v1",
		Timeout: 5 * time.Second,
	}, store, nil)
	require.NoError(t, err)
	return New(client, nil)
}

func TestAuth_LoginSkipsAuthorization(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"access_token":  "new-token",
			"refresh_token": "refresh",
			"token_type":    "bearer",
			"user":          gin.H{"id": "u1", "email": "a@b.co", "first_name": "Ann", "last_name": "Lee", "role": "user"},
		})
	})
	svc := newServices(t, b)

	resp, err := svc.Auth.Login(context.Background(), api.Credentials{Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "new-token", resp.AccessToken)
	assert.Equal(t, "Ann Lee", resp.User.FullName())

	req := b.last(t)
	assert.Empty(t, req.Auth)
	assert.JSONEq(t, `{"email":"a@b.co","password":"secret"}`, string(req.Body))
}

func TestAuth_LoginValidatesBeforeSending(t *testing.T) {
	b := newFakeBackend(t)
	svc := newServices(t, b)

	_, err := svc.Auth.Login(context.Background(), api.Credentials{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Zero(t, b.count())
}

func TestAuth_MeSendsBearer(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": "u1", "email": "a@b.co"})
	})
	svc := newServices(t, b)

	user, err := svc.Auth.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Bearer tok", b.last(t).Auth)
}

func TestAuth_Refresh(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/auth/refresh", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"access_token": "fresh", "token_type": "bearer"})
	})
	svc := newServices(t, b)

	_, err := svc.Auth.Refresh(context.Background(), "")
	require.Error(t, err)

	resp, err := svc.Auth.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.AccessToken)
	assert.JSONEq(t, `{"refresh_token":"r1"}`, string(b.last(t).Body))
}

func TestDocuments_ListSendsFilter(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"items": []gin.H{{"id": "d1", "title": "Contract", "created_at": "2024-05-01T10:00:00"}},
			"total": 11, "page": 2, "limit": 10, "pages": 2,
		})
	})
	svc := newServices(t, b)

	page, err := svc.Documents.List(context.Background(), api.DocumentFilter{Page: 2, Limit: 10, Status: "draft"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Contract", page.Items[0].Title)
	assert.Equal(t, 2024, page.Items[0].CreatedAt.Year())
	assert.Equal(t, 2, page.Pages)

	q := b.last(t).Query
	assert.Contains(t, q, "page=2")
	assert.Contains(t, q, "limit=10")
	assert.Contains(t, q, "status=draft")
	assert.NotContains(t, q, "search")
}

func TestDocuments_ListRejectsBadFilter(t *testing.T) {
	b := newFakeBackend(t)
	svc := newServices(t, b)

	_, err := svc.Documents.List(context.Background(), api.DocumentFilter{Limit: api.MaxPageSize + 1})
	require.Error(t, err)
	assert.Zero(t, b.count())
}

func TestDocuments_GetNotFound(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/documents/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Document not found"})
	})
	svc := newServices(t, b)

	_, err := svc.Documents.Get(context.Background(), "missing")
	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Document not found", apiErr.Message)
}

func TestDocuments_Delete(t *testing.T) {
	b := newFakeBackend(t)
	b.api().DELETE("/documents/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	svc := newServices(t, b)

	require.NoError(t, svc.Documents.Delete(context.Background(), "d1", false))
	req := b.last(t)
	assert.Equal(t, "/api/v1/documents/d1", req.Path)
	assert.Empty(t, req.Query)

	require.NoError(t, svc.Documents.Delete(context.Background(), "d1", true))
	assert.Equal(t, "permanent=true", b.last(t).Query)
}

func TestDocuments_SetFavoriteAndArchived(t *testing.T) {
	b := newFakeBackend(t)
	b.api().PATCH("/documents/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "updated"})
	})
	svc := newServices(t, b)

	require.NoError(t, svc.Documents.SetFavorite(context.Background(), "d1", true))
	assert.JSONEq(t, `{"is_favorite":true}`, string(b.last(t).Body))

	require.NoError(t, svc.Documents.SetArchived(context.Background(), "d1", false))
	assert.JSONEq(t, `{"is_archived":false}`, string(b.last(t).Body))
}

func TestDocuments_Restore(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/documents/:id/restore", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "restored"})
	})
	svc := newServices(t, b)

	require.NoError(t, svc.Documents.Restore(context.Background(), "d1"))
	assert.Equal(t, "/api/v1/documents/d1/restore", b.last(t).Path)
}

func TestDocuments_BulkOperations(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/documents/bulk-delete", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
	b.api().POST("/documents/bulk-archive", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "archived"})
	})
	svc := newServices(t, b)
	ctx := context.Background()

	require.NoError(t, svc.Documents.BulkDelete(ctx, nil))
	assert.Zero(t, b.count())

	require.NoError(t, svc.Documents.BulkDelete(ctx, []string{"a", "b"}))
	assert.JSONEq(t, `["a","b"]`, string(b.last(t).Body))

	require.NoError(t, svc.Documents.BulkArchive(ctx, []string{"c"}))
	req := b.last(t)
	assert.Equal(t, "/api/v1/documents/bulk-archive", req.Path)
	assert.JSONEq(t, `["c"]`, string(req.Body))
}

func TestDocuments_Upload(t *testing.T) {
	b := newFakeBackend(t)
	var gotTitle, gotTags, gotFile string
	b.api().POST("/documents/upload", func(c *gin.Context) {
		gotTitle = c.PostForm("title")
		gotTags = c.PostForm("tags")
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		f, _ := fh.Open()
		data, _ := io.ReadAll(f)
		_ = f.Close()
		gotFile = fh.Filename + ":" + string(data)
		c.JSON(http.StatusOK, gin.H{"id": "d9", "title": gotTitle})
	})
	svc := newServices(t, b)

	doc, err := svc.Documents.Upload(context.Background(),
		apiclient.UploadFile{Name: "act.pdf", Reader: bytes.NewReader([]byte("%PDF"))},
		api.UploadMetadata{Title: "Act", Tags: []string{"q1"}})
	require.NoError(t, err)
	assert.Equal(t, "d9", doc.ID)
	assert.Equal(t, "Act", gotTitle)
	assert.Equal(t, `["q1"]`, gotTags)
	assert.Equal(t, "act.pdf:%PDF", gotFile)
	assert.Contains(t, b.last(t).ContentType, "multipart/form-data; boundary=")
}

func TestDocuments_Download(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/documents/:id/download", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="act.pdf"`)
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.7"))
	})
	svc := newServices(t, b)

	blob, err := svc.Documents.Download(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "act.pdf", blob.Filename)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), blob.Data)
}

func TestDocuments_Search(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/documents/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"items":  []gin.H{{"id": "d1", "title": "Lease", "type": "contract", "answer": "found", "available": true}},
			"answer": "Found 1 document",
			"total":  1, "page": 1, "limit": 10, "pages": 1,
		})
	})
	svc := newServices(t, b)

	_, err := svc.Documents.Search(context.Background(), "", 0, 0)
	require.Error(t, err)

	res, err := svc.Documents.Search(context.Background(), "lease", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Found 1 document", res.Answer)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Available)
	assert.Equal(t, "query=lease", b.last(t).Query)
}

func TestCounterparties(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/counterparties", func(c *gin.Context) {
		var req api.CounterpartyRequest
		_ = c.ShouldBindJSON(&req)
		c.JSON(http.StatusOK, gin.H{"id": "c1", "name": req.Name, "inn": req.INN, "trustScore": 80})
	})
	b.api().GET("/counterparties/:id/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []gin.H{{"id": "d1", "title": "Act", "status": "signed"}}, "total": 1})
	})
	svc := newServices(t, b)
	ctx := context.Background()

	_, err := svc.Counterparties.Create(ctx, api.CounterpartyRequest{Name: "Acme", INN: "12ab"})
	require.Error(t, err)
	assert.Zero(t, b.count())

	cp, err := svc.Counterparties.Create(ctx, api.CounterpartyRequest{Name: "Acme", INN: "7701234567"})
	require.NoError(t, err)
	assert.Equal(t, "c1", cp.ID)
	assert.Equal(t, 80, cp.TrustScore)

	docs, err := svc.Counterparties.Documents(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, docs.Total)
	assert.Equal(t, "signed", docs.Items[0].Status)
}

func TestAnalytics_Validation(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/analytics/workflow", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"name": "Mon", "incoming": 3, "processed": 2}})
	})
	b.api().GET("/analytics/documents-flow", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"name": "01.05", "docs": 4}})
	})
	svc := newServices(t, b)
	ctx := context.Background()

	_, err := svc.Analytics.Workflow(ctx, "decade")
	require.Error(t, err)

	points, err := svc.Analytics.Workflow(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "period=week", b.last(t).Query)
	require.Len(t, points, 1)
	assert.Equal(t, 3, points[0].Incoming)

	for _, days := range []int{0, 366} {
		_, err := svc.Analytics.DocumentsFlow(ctx, days)
		assert.Error(t, err, "days=%d", days)
	}
	flow, err := svc.Analytics.DocumentsFlow(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, "days=30", b.last(t).Query)
	assert.Equal(t, 4, flow[0].Docs)
}

func TestChat_StreamMessage(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/chat/stream", func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Status(http.StatusOK)
		for _, word := range []string{"Hello", "world"} {
			fmt.Fprintf(c.Writer, "data: {\"content\": %q}\n\n", word+" ")
			c.Writer.Flush()
		}
		fmt.Fprint(c.Writer, "data: {\"documents\": [{\"document_id\": \"d1\", \"title\": \"Act\", \"available\": true, \"similarity\": 0.9}]}\n\n")
		fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	})
	svc := newServices(t, b)

	var chunks []string
	var batches [][]api.SourceDocument
	res, err := svc.Chat.StreamMessage(context.Background(), "hi", nil,
		func(s string) { chunks = append(chunks, s) },
		func(docs []api.SourceDocument) { batches = append(batches, docs) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello ", "world "}, chunks)
	assert.Equal(t, "Hello world ", res.Text)
	assert.True(t, res.Done)
	require.Len(t, batches, 1)
	assert.Equal(t, "d1", batches[0][0].DocumentID)

	req := b.last(t)
	assert.JSONEq(t, `{"message":"hi"}`, string(req.Body))
	assert.Equal(t, "Bearer tok", req.Auth)
}

func TestChat_StreamMessageRejectedBeforeCallbacks(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/chat/stream", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
	})
	svc := newServices(t, b)

	called := false
	_, err := svc.Chat.StreamMessage(context.Background(), "hi", nil,
		func(string) { called = true }, nil)
	var perr *apiclient.StreamProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	assert.Equal(t, "Could not validate credentials", perr.Message)
	assert.False(t, called)
}

func TestChat_EmptyMessage(t *testing.T) {
	b := newFakeBackend(t)
	svc := newServices(t, b)

	_, err := svc.Chat.Send(context.Background(), "   ", nil)
	require.Error(t, err)
	_, err = svc.Chat.StreamMessage(context.Background(), "", nil, nil, nil)
	require.Error(t, err)
	assert.Zero(t, b.count())
}

func TestChat_HistoryAndClear(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/chat/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": []gin.H{
			{"id": "m1", "role": "user", "content": "hi", "timestamp": "2024-05-01T10:00:00.123456"},
		}})
	})
	b.api().DELETE("/chat/history", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	svc := newServices(t, b)
	ctx := context.Background()

	hist, err := svc.Chat.History(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, "limit=20", b.last(t).Query)
	require.Len(t, hist.Messages, 1)
	assert.Equal(t, "user", hist.Messages[0].Role)
	assert.False(t, hist.Messages[0].Timestamp.IsZero())

	require.NoError(t, svc.Chat.ClearHistory(ctx))
	assert.Equal(t, http.MethodDelete, b.last(t).Method)
}

func TestSettings(t *testing.T) {
	b := newFakeBackend(t)
	b.api().POST("/settings/security", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "changed"})
	})
	b.api().POST("/settings/avatar", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"avatar_url": "/avatars/u1.png"})
	})
	b.api().PATCH("/settings", func(c *gin.Context) {
		var s api.Settings
		_ = c.ShouldBindJSON(&s)
		c.JSON(http.StatusOK, s)
	})
	svc := newServices(t, b)
	ctx := context.Background()

	err := svc.Settings.ChangePassword(ctx, api.PasswordChange{CurrentPassword: "samesame1", NewPassword: "samesame1"})
	require.Error(t, err)
	assert.Zero(t, b.count())

	require.NoError(t, svc.Settings.ChangePassword(ctx, api.PasswordChange{CurrentPassword: "old-pass1", NewPassword: "new-pass1"}))

	updated, err := svc.Settings.Update(ctx, api.Settings{Theme: "dark", AutoArchiveDays: 30})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Theme)

	avatar, err := svc.Settings.UploadAvatar(ctx, apiclient.UploadFile{Name: "me.png", Reader: bytes.NewReader([]byte{0x89})})
	require.NoError(t, err)
	assert.Equal(t, "/avatars/u1.png", avatar.AvatarURL)
}

func TestStorage(t *testing.T) {
	b := newFakeBackend(t)
	b.api().GET("/storage/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"by_type": []gin.H{{"type": "contract", "size_gb": 1.5, "count": 12}}})
	})
	svc := newServices(t, b)

	stats, err := svc.Storage.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.ByType, 1)
	assert.Equal(t, 12, stats.ByType[0].Count)

	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"size_gb":1.5`)
}
