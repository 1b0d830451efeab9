package havona

import (
	"context"
	"io"
)

// ETRsService is a focused wrapper around the Electronic Trade Record
// type catalogue and extraction endpoints. For the full extraction
// pipeline including trade blotting see DocumentsService.
//
// Extraction and persistence are separate steps: Extract returns
// structured fields without saving anything; persist them with
// Client.Write("ETRDocument", ...) or Trades.Create.
type ETRsService struct {
	client *Client
}

// Types returns the ETR document types the platform supports.
func (s *ETRsService) Types(ctx context.Context) ([]ETRType, error) {
	return s.client.Documents.SupportedTypes(ctx)
}

// Extract pulls structured fields from an ETR document PDF. Nothing is
// persisted.
func (s *ETRsService) Extract(ctx context.Context, filename string, file io.Reader, documentType, mode string) (*ExtractionResult, error) {
	return s.client.Documents.Extract(ctx, filename, file, documentType, mode)
}
