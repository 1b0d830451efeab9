package havona

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"
)

// DocumentsService extracts structured data from trade documents. Neither
// extraction pathway persists anything; pass the result's ToTradeFields to
// Trades.Create to save it.
type DocumentsService struct {
	client *Client
}

// Extract sends an Electronic Trade Record PDF to the AI extraction
// endpoint. documentType is one of COMMERCIAL_INVOICE, BILL_OF_LADING or
// CERTIFICATE_OF_ORIGIN; mode is "native" (vision, the default) or "text".
//
//	result, err := client.Documents.Extract(ctx, "invoice.pdf", file, "COMMERCIAL_INVOICE", "")
//	trade, err := client.Trades.Create(ctx, result.ToTradeFields())
func (s *DocumentsService) Extract(ctx context.Context, filename string, file io.Reader, documentType, mode string) (*ExtractionResult, error) {
	if mode == "" {
		mode = "native"
	}

	raw, err := s.client.upload(ctx, "/api/etr/extract", filename, file, "application/pdf", map[string]string{
		"document_type": documentType,
		"mode":          mode,
	})
	if err != nil {
		return nil, err
	}

	return decodeExtraction(raw)
}

// ExtractTrade extracts TradeContract fields from an unstructured trade
// document: an email confirmation, PDF or spreadsheet.
func (s *DocumentsService) ExtractTrade(ctx context.Context, filename string, file io.Reader) (*ExtractionResult, error) {
	raw, err := s.client.upload(ctx, "/api/blotting/extract-pdf", filename, file, contentTypeFor(filename), nil)
	if err != nil {
		return nil, err
	}

	return decodeExtraction(raw)
}

// SupportedTypes lists the ETR document types the extraction service
// accepts. The server returns either a bare list or an object wrapping it.
func (s *DocumentsService) SupportedTypes(ctx context.Context) ([]ETRType, error) {
	raw, err := s.client.Request(ctx, http.MethodGet, "/api/etr/types", nil)
	if err != nil {
		return nil, err
	}

	var list []ETRType
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Types         []ETRType `json:"types"`
		DocumentTypes []ETRType `json:"documentTypes"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, decodeError(err, raw)
	}
	if wrapped.Types != nil {
		return wrapped.Types, nil
	}
	return wrapped.DocumentTypes, nil
}

func decodeExtraction(raw json.RawMessage) (*ExtractionResult, error) {
	var result ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, decodeError(err, raw)
	}
	return &result, nil
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
