package report

import (
	"context"
	"strings"
	"testing"

	"github.com/lensquant/lensquant/internal/models"
)

func TestListReports_IndexesGeneratedFiles(t *testing.T) {
	svc, _ := newTestReportService(t, &stubFMP{}, nil, false)

	_, err := svc.Generate(context.Background(), models.ReportRequest{
		Type:           models.ReportTypeStock,
		Symbols:        []string{"AAPL"},
		BatchTimestamp: "20260826_160000",
		Formats:        []string{"markdown"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	files, err := svc.ListReports()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected listed files")
	}

	var foundMD bool
	for _, f := range files {
		if f.Watermark != "Lens Quant" {
			t.Errorf("%s: watermark: got %q", f.Name, f.Watermark)
		}
		if f.Format == "markdown" {
			foundMD = true
			if !strings.HasPrefix(f.Path, "20260826_160000/") {
				t.Errorf("path should be batch-relative, got %q", f.Path)
			}
			if f.RenderMode != "native" {
				t.Errorf("markdown render mode: got %q", f.RenderMode)
			}
		}
	}
	if !foundMD {
		t.Errorf("markdown file missing from listing: %+v", files)
	}
}

func TestRenderModeFromFormat(t *testing.T) {
	cases := map[string]string{
		"markdown": "native",
		"png":      "native",
		"pdf":      "external",
		"pptx":     "external",
		"unknown":  "unknown",
	}
	for format, want := range cases {
		if got := renderModeFromFormat(format); got != want {
			t.Errorf("renderModeFromFormat(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestListReports_EmptyTree(t *testing.T) {
	svc, _ := newTestReportService(t, &stubFMP{}, nil, false)
	files, err := svc.ListReports()
	if err != nil {
		t.Fatalf("list on empty tree: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected empty listing, got %+v", files)
	}
}

func TestResolveDownloadPath_RejectsTraversal(t *testing.T) {
	svc, _ := newTestReportService(t, &stubFMP{}, nil, false)

	for _, rel := range []string{"../../etc/passwd", "..", "batch/../../secret", ""} {
		if _, err := svc.ResolveDownloadPath(rel); err == nil {
			t.Errorf("path %q: expected rejection", rel)
		}
	}
}

func TestResolveDownloadPath_ValidFile(t *testing.T) {
	svc, _ := newTestReportService(t, &stubFMP{}, nil, false)

	payload, err := svc.Generate(context.Background(), models.ReportRequest{
		Type:           models.ReportTypeStock,
		Symbols:        []string{"AAPL"},
		BatchTimestamp: "20260826_170000",
		Formats:        []string{"markdown"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(payload.Files) == 0 {
		t.Fatal("no files generated")
	}

	abs, err := svc.ResolveDownloadPath("20260826_170000/stock_aapl.md")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasSuffix(abs, "stock_aapl.md") {
		t.Errorf("unexpected path %q", abs)
	}
}
