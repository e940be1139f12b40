package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// UploadFile is the file part of a multipart upload.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// Upload posts file and metadata as multipart/form-data. Metadata values
// are stringified; maps, slices and structs are sent as JSON. nil values
// are skipped. The only Content-Type set is the one produced by the
// multipart writer, which carries the boundary.
func (c *Client) Upload(ctx context.Context, path string, file UploadFile, metadata map[string]any, out any) error {
	payload, contentType, err := buildMultipart(file, metadata)
	if err != nil {
		return err
	}
	return c.doMultipart(ctx, path, payload, contentType, out)
}

func buildMultipart(file UploadFile, metadata map[string]any) ([]byte, string, error) {
	if file.Reader == nil {
		return nil, "", fmt.Errorf("upload requires a file")
	}
	if file.Name == "" {
		file.Name = "upload"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, "", fmt.Errorf("failed to read upload file: %w", err)
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, ok := deref(metadata[k])
		if !ok {
			continue
		}
		if err := w.WriteField(k, stringify(v)); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
