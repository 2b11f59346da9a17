// Package artifact resolves the rendered image of a card version. Descriptor
// builders take a resolved Ref as input, so an artifact always exists before
// any issue or thread body points at it.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/export"
)

// Ref points at a rendered artifact.
type Ref struct {
	URL         string
	Fingerprint string
}

// Provider ensures a card's artifact exists and returns a reference to it.
type Provider interface {
	Ensure(ctx context.Context, card *domain.Card) (Ref, error)
}

// Fingerprint identifies the rendered content of a card: the SHA-256 of its
// export without image URL. Development state does not affect it.
func Fingerprint(card *domain.Card) string {
	data, err := json.Marshal(export.FromCard(card, ""))
	if err != nil {
		// export.Card only holds marshalable fields
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TemplateProvider derives artifact URLs from a template without rendering
// anything. Placeholders: {project}, {number}, {code}, {version}, {fingerprint}.
type TemplateProvider struct {
	Template string
}

// Ensure implements Provider.
func (p TemplateProvider) Ensure(_ context.Context, card *domain.Card) (Ref, error) {
	fp := Fingerprint(card)
	return Ref{URL: expand(p.Template, card, fp), Fingerprint: fp}, nil
}

func expand(template string, card *domain.Card, fp string) string {
	short := fp
	if len(short) > 12 {
		short = short[:12]
	}
	return strings.NewReplacer(
		"{project}", strconv.Itoa(card.ProjectID),
		"{number}", strconv.Itoa(card.Number),
		"{code}", card.Code(),
		"{version}", card.Version.String(),
		"{fingerprint}", short,
	).Replace(template)
}
