package provider

import (
	"context"

	"github.com/blogforge/api/internal/client"
	"github.com/blogforge/api/internal/model"
	"github.com/blogforge/api/internal/storage"
)

// BlogProvider bundles the collaborators that do the real work behind one
// capability surface: the OpenAI client serves the research and generation
// stages, the local archive serves validation/persistence.
type BlogProvider struct {
	ai      *client.OpenAIClient
	archive *storage.LocalStore
}

func New(ai *client.OpenAIClient, archive *storage.LocalStore) *BlogProvider {
	return &BlogProvider{
		ai:      ai,
		archive: archive,
	}
}

// FetchSourceMaterial gathers candidate papers for the topic.
func (p *BlogProvider) FetchSourceMaterial(ctx context.Context, topic string, paperCount int) (*model.ResearchData, error) {
	return p.ai.FetchSourceMaterial(ctx, topic, paperCount)
}

// SynthesizeContent writes the blog post from the gathered research.
func (p *BlogProvider) SynthesizeContent(ctx context.Context, research *model.ResearchData, opts model.GenerateRequest) (*model.BlogDocument, error) {
	return p.ai.SynthesizeContent(ctx, research, opts)
}

// Persist validates the finished document and archives it to disk.
func (p *BlogProvider) Persist(doc *model.BlogDocument, topic string) (string, error) {
	if err := client.ValidateBlogDocument(doc); err != nil {
		return "", err
	}
	return p.archive.Save(doc, topic)
}
