package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ziadkadry99/emsguide/internal/config"
	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/logging"
	"github.com/ziadkadry99/emsguide/internal/manifest"
)

func loadSample(t *testing.T) *guide.Document {
	t.Helper()
	color.NoColor = true
	doc, err := guide.Default()
	if err != nil {
		t.Fatalf("loading sample dataset: %v", err)
	}
	return doc
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestPrintSearch_Table(t *testing.T) {
	doc := loadSample(t)
	var buf bytes.Buffer
	if err := printSearch(&buf, doc, "C4", expansion.Options{}, false); err != nil {
		t.Fatalf("printSearch() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"TITLE", "轉送原則", "內科急症處置", "2 of 7 guidelines, 3 matches"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "現場評估") {
		t.Errorf("non-matching guideline listed:\n%s", out)
	}
}

func TestPrintSearch_Full(t *testing.T) {
	doc := loadSample(t)
	var buf bytes.Buffer
	if err := printSearch(&buf, doc, "C4", expansion.Options{}, true); err != nil {
		t.Fatalf("printSearch() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"轉送原則", "到院前通報內容依 C4 附表填寫。", "M7 疑似腦中風"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSearch_NoMatches(t *testing.T) {
	doc := loadSample(t)
	var buf bytes.Buffer
	if err := printSearch(&buf, doc, "zzz", expansion.Options{}, false); err != nil {
		t.Fatalf("printSearch() error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "0 of 7 guidelines, 0 matches" {
		t.Errorf("output = %q", got)
	}
}

func TestHighlight(t *testing.T) {
	color.NoColor = true
	if got := highlight("依據 c4 轉送", "C4"); got != "依據 c4 轉送" {
		t.Errorf("highlight() = %q", got)
	}
}

func TestPrintOutline(t *testing.T) {
	doc := loadSample(t)
	var buf bytes.Buffer
	printOutline(&buf, doc)
	out := buf.String()
	for _, want := range []string{
		"臺南市政府消防局 緊急救護指引 (114年版)",
		"1 壹、依據 緊急醫療救護法",
		"5/51 M1 意識改變",
		"5/51/511 M1-1 低血糖處置",
		"6/62/621 T6-1 沖脫泡蓋送",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("outline missing %q:\n%s", want, out)
		}
	}
}

func TestCheckDocument(t *testing.T) {
	doc := loadSample(t)

	var buf bytes.Buffer
	if n := checkDocument(&buf, doc, ""); n != 0 {
		t.Errorf("sample dataset has %d problems:\n%s", n, buf.String())
	}

	buf.Reset()
	n := checkDocument(&buf, doc, t.TempDir())
	if n != len(doc.Images()) {
		t.Errorf("problems = %d, want one per image (%d)", n, len(doc.Images()))
	}
	if !strings.Contains(buf.String(), "./PIC/C4_transport.png: image not found") {
		t.Errorf("output missing missing-image line:\n%s", buf.String())
	}
}

func TestLoadManifest_FromDataset(t *testing.T) {
	doc := loadSample(t)
	cfg := testConfig(t)

	m, err := loadManifest(cfg, doc)
	if err != nil {
		t.Fatalf("loadManifest() error: %v", err)
	}
	if m.Version != config.DefaultGeneration {
		t.Errorf("version = %q, want %q", m.Version, config.DefaultGeneration)
	}
	if m.Origin != cfg.Cache.Origin {
		t.Errorf("origin = %q, want %q", m.Origin, cfg.Cache.Origin)
	}
	if len(m.URLs) != len(doc.Images()) || m.URLs[0] != "/PIC/On-site assessment.png" {
		t.Errorf("urls = %v", m.URLs)
	}
}

func TestLoadManifest_FromFile(t *testing.T) {
	doc := loadSample(t)
	cfg := testConfig(t)
	cfg.Cache.Manifest = filepath.Join(cfg.DataDir, "precache.yml")

	saved := &manifest.Manifest{Version: "custom-v2", URLs: []string{"/", "/style.css"}}
	if err := saved.Save(cfg.Cache.Manifest); err != nil {
		t.Fatal(err)
	}

	m, err := loadManifest(cfg, doc)
	if err != nil {
		t.Fatalf("loadManifest() error: %v", err)
	}
	if m.Version != "custom-v2" || len(m.URLs) != 2 {
		t.Errorf("got %+v", m)
	}
	if m.Origin != cfg.Cache.Origin {
		t.Errorf("origin should default to the configured one, got %q", m.Origin)
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	doc := loadSample(t)
	cfg := testConfig(t)
	cfg.Cache.Manifest = filepath.Join(cfg.DataDir, "broken.yml")
	if err := os.WriteFile(cfg.Cache.Manifest, []byte("urls: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadManifest(cfg, doc); err == nil {
		t.Error("expected error for unparsable manifest")
	}
}

func TestOpenCache_Status(t *testing.T) {
	doc := loadSample(t)
	cfg := testConfig(t)

	c, err := openCache(cfg, doc, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("openCache() error: %v", err)
	}
	defer c.Close()

	if _, err := os.Stat(cfg.DBPath()); err != nil {
		t.Errorf("database not created: %v", err)
	}

	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if st.State != "parsed" || len(st.Stores) != 0 {
		t.Errorf("status = %+v", st)
	}

	var buf bytes.Buffer
	printCacheStatus(&buf, st, len(c.manifest.URLs))
	out := buf.String()
	for _, want := range []string{config.DefaultGeneration, "(none)"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}
