package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/export"
)

// Renderer produces the image of a card.
type Renderer interface {
	Render(ctx context.Context, card export.Card) (data []byte, contentType string, err error)
}

// ObjectStoreConfig configures an S3-compatible object store.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// NewObjectClient connects to an S3-compatible object store.
func NewObjectClient(cfg ObjectStoreConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return client, nil
}

// ObjectProvider keeps rendered images in a bucket. Objects are keyed by
// fingerprint, so a card is rendered at most once per distinct content.
type ObjectProvider struct {
	Client    *minio.Client
	Bucket    string
	PublicURL string // base URL objects are served from
	Renderer  Renderer
	Log       *zap.Logger
}

// Key is the object key of a card's artifact.
func (p *ObjectProvider) Key(card *domain.Card, fp string) string {
	return fmt.Sprintf("%d/%s-%s-%s.png", card.ProjectID, card.Code(), card.Version, fp[:12])
}

// Ensure implements Provider.
func (p *ObjectProvider) Ensure(ctx context.Context, card *domain.Card) (Ref, error) {
	fp := Fingerprint(card)
	key := p.Key(card, fp)
	ref := Ref{URL: strings.TrimRight(p.PublicURL, "/") + "/" + p.Bucket + "/" + key, Fingerprint: fp}

	_, err := p.Client.StatObject(ctx, p.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return ref, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return Ref{}, fmt.Errorf("stat artifact %s: %w", key, err)
	}

	data, contentType, err := p.Renderer.Render(ctx, export.FromCard(card, ref.URL))
	if err != nil {
		return Ref{}, fmt.Errorf("render %s: %w", card.Key(), err)
	}
	_, err = p.Client.PutObject(ctx, p.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Ref{}, fmt.Errorf("upload artifact %s: %w", key, err)
	}

	p.Log.Info("rendered artifact",
		zap.Int("project", card.ProjectID),
		zap.Int("number", card.Number),
		zap.String("version", card.Version.String()),
		zap.String("key", key))
	return ref, nil
}

// HTTPRenderer posts the card export to an external rendering service and
// reads the image from the response.
type HTTPRenderer struct {
	URL    string
	Client *http.Client
}

// NewHTTPRenderer creates a renderer with a bounded request timeout.
func NewHTTPRenderer(url string) *HTTPRenderer {
	return &HTTPRenderer{URL: url, Client: &http.Client{Timeout: 60 * time.Second}}
}

// Render implements Renderer.
func (r *HTTPRenderer) Render(ctx context.Context, card export.Card) ([]byte, string, error) {
	body, err := json.Marshal(card)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("renderer returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return data, contentType, nil
}
