package client

import (
	"encoding/json"
	"fmt"

	"github.com/blogforge/api/internal/model"
)

// ValidateBlogDocument re-checks a document against the blog schema before it
// is archived. The generation stage already validated the raw model output;
// this guards the artifact that actually reaches disk.
func ValidateBlogDocument(doc *model.BlogDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return model.NewProviderError(model.ErrKindAPI, "validate document", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return model.NewProviderError(model.ErrKindAPI, "validate document", err)
	}
	if err := blogSchema.Validate(v); err != nil {
		return model.NewProviderError(model.ErrKindAPI, "validate document",
			fmt.Errorf("document does not match schema: %w", err))
	}
	return nil
}
