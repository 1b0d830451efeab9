package havona

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestDocumentsExtractUploadsMultipart(t *testing.T) {
	f := newClientFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/etr/extract" {
			t.Errorf("path = %q, want /api/etr/extract", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart/form-data", r.Header.Get("Content-Type"))
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if got := r.FormValue("document_type"); got != "COMMERCIAL_INVOICE" {
			t.Errorf("document_type = %q, want COMMERCIAL_INVOICE", got)
		}
		if got := r.FormValue("mode"); got != "native" {
			t.Errorf("mode = %q, want the native default", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "invoice.pdf" {
			t.Errorf("filename = %q, want invoice.pdf", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("file content type = %q, want application/pdf", ct)
		}
		content, err := io.ReadAll(file)
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if string(content) != "%PDF-1.4 fake" {
			t.Errorf("file content = %q", content)
		}

		fmt.Fprint(w, `{
			"documentType": "COMMERCIAL_INVOICE",
			"extractedData": {"invoiceNumber": "INV-001", "contractNo": "TC-2026-001"},
			"confidence": 0.94,
			"source": "pdf",
			"uploadedFilename": "invoice.pdf"
		}`)
	})

	result, err := f.client.Documents.Extract(context.Background(),
		"invoice.pdf", strings.NewReader("%PDF-1.4 fake"), "COMMERCIAL_INVOICE", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DocumentType != "COMMERCIAL_INVOICE" {
		t.Errorf("DocumentType = %q", result.DocumentType)
	}
	if result.Fields["invoiceNumber"] != "INV-001" {
		t.Errorf("Fields = %v, want extracted data", result.Fields)
	}
	if result.Confidence != 0.94 {
		t.Errorf("Confidence = %v, want 0.94", result.Confidence)
	}
}

func TestDocumentsExtractTradeGuessesContentType(t *testing.T) {
	f := newClientFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/blotting/extract-pdf" {
			t.Errorf("path = %q, want /api/blotting/extract-pdf", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		want := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if ct := header.Header.Get("Content-Type"); ct != want {
			t.Errorf("file content type = %q, want %q", ct, want)
		}

		fmt.Fprint(w, `{"documentType":"TRADE_CONFIRMATION","fields":{"contractNo":"TC-77"}}`)
	})

	result, err := f.client.Documents.ExtractTrade(context.Background(),
		"confirmation.xlsx", strings.NewReader("spreadsheet bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields["contractNo"] != "TC-77" {
		t.Errorf("Fields = %v, want the fields envelope decoded", result.Fields)
	}
}

func TestDocumentsSupportedTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bare list",
			body: `[{"id":"COMMERCIAL_INVOICE","name":"Commercial Invoice"},{"id":"BILL_OF_LADING","name":"Bill of Lading"}]`,
		},
		{
			name: "wrapped in types",
			body: `{"types":[{"id":"COMMERCIAL_INVOICE","name":"Commercial Invoice"},{"id":"BILL_OF_LADING","name":"Bill of Lading"}]}`,
		},
		{
			name: "wrapped in documentTypes",
			body: `{"documentTypes":[{"id":"COMMERCIAL_INVOICE","name":"Commercial Invoice"},{"id":"BILL_OF_LADING","name":"Bill of Lading"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newClientFixture(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/etr/types" {
					t.Errorf("path = %q, want /api/etr/types", r.URL.Path)
				}
				fmt.Fprint(w, tt.body)
			})

			types, err := f.client.Documents.SupportedTypes(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(types) != 2 {
				t.Fatalf("got %d types, want 2", len(types))
			}
			if types[0].ID != "COMMERCIAL_INVOICE" {
				t.Errorf("first type = %+v", types[0])
			}
		})
	}
}

func TestETRsAliasesDocuments(t *testing.T) {
	f := newClientFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/etr/types":
			fmt.Fprint(w, `[{"id":"BILL_OF_LADING","name":"Bill of Lading"}]`)
		case "/api/etr/extract":
			fmt.Fprint(w, `{"documentType":"BILL_OF_LADING","extractedData":{"blNumber":"BL-9"}}`)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	types, err := f.client.ETRs.Types(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) != 1 || types[0].ID != "BILL_OF_LADING" {
		t.Errorf("types = %+v", types)
	}

	result, err := f.client.ETRs.Extract(context.Background(),
		"bol.pdf", strings.NewReader("%PDF"), "BILL_OF_LADING", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields["blNumber"] != "BL-9" {
		t.Errorf("Fields = %v", result.Fields)
	}
}
