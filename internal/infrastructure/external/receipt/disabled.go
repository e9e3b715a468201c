package receipt

import (
	"context"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

// Disabled stands in for the extractor when no OpenAI key is configured. The
// extract endpoint stays mounted and reports the feature as unavailable.
type Disabled struct{}

func (Disabled) Extract(ctx context.Context, filePath string) (*entity.ExtractedFields, error) {
	return nil, port.ErrExtractorUnavailable
}

var _ port.ReceiptExtractor = Disabled{}
