// Package netx holds the HTTP upload used for presigned object store URLs.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Progress is called as the body is sent, with the bytes written so far and
// the total size.
type Progress func(sent, total int64)

// UploadRequest describes a single presigned upload.
type UploadRequest struct {
	URL         string
	Method      string
	ContentType string
	Body        []byte
	Progress    Progress
}

type progressReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.progress(p.sent, p.total)
	}
	return n, err
}

// UploadToPresignedURL sends req.Body to the presigned URL. Any non-2xx
// answer is an error carrying the status and the response body.
func UploadToPresignedURL(ctx context.Context, client *http.Client, req UploadRequest) error {
	if client == nil {
		client = http.DefaultClient
	}
	method := req.Method
	if method == "" {
		method = http.MethodPut
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	total := int64(len(req.Body))
	var body io.Reader = bytes.NewReader(req.Body)
	if req.Progress != nil {
		body = &progressReader{r: body, total: total, progress: req.Progress}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return err
	}
	httpReq.ContentLength = total
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
