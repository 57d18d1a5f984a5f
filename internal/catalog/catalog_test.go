package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRecording(t *testing.T, root, path string) {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	csv := "start|end|text\n0.0|2.0|hello\n"
	if err := os.WriteFile(filepath.Join(dir, "transcript.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDiscoversRecordings(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "christmas1986")
	writeRecording(t, root, "memoirs/Norm_red")

	c, err := Scan(root, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(c.Recordings()) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(c.Recordings()))
	}

	rec, ok := c.Get("memoirs/Norm_red")
	if !ok {
		t.Fatal("memoirs/Norm_red not found")
	}
	if rec.Title != "Memoirs" {
		t.Errorf("Title = %q, want %q", rec.Title, "Memoirs")
	}
	if rec.AudioPath != "/static_assets/recordings/memoirs/Norm_red/audio_original.mp3" {
		t.Errorf("AudioPath = %q", rec.AudioPath)
	}
}

func TestScanExcludePattern(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "keep")
	writeRecording(t, root, "drafts/rough_cut")

	c, err := Scan(root, ScanOptions{Exclude: []string{"drafts/**"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(c.Recordings()) != 1 || c.Recordings()[0].Path != "keep" {
		t.Errorf("recordings = %+v, want only keep", c.Recordings())
	}
}

func TestScanIncludePattern(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "memoirs/Norm_red")
	writeRecording(t, root, "glynn_interview")

	c, err := Scan(root, ScanOptions{Include: []string{"memoirs/**"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(c.Recordings()) != 1 || c.Recordings()[0].Path != "memoirs/Norm_red" {
		t.Errorf("recordings = %+v, want only memoirs/Norm_red", c.Recordings())
	}
}

func TestTitleForFallback(t *testing.T) {
	if got := TitleFor("attic_tapes/reel_two"); got != "Reel Two" {
		t.Errorf("TitleFor = %q, want %q", got, "Reel Two")
	}
}

func TestCatalogTranscript(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "christmas1986")

	c, err := Scan(root, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	tr, err := c.Transcript("christmas1986")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(tr.Segments) != 1 || tr.Segments[0].Text != "hello" {
		t.Errorf("segments = %+v", tr.Segments)
	}
}

func TestPlayerLink(t *testing.T) {
	got := PlayerLink("memoirs/Norm_red", 123.5)
	want := "/player?recording=memoirs%2FNorm_red&t=123.50"
	if got != want {
		t.Errorf("PlayerLink = %q, want %q", got, want)
	}

	if got := PlayerLink("christmas1986", 45); got != "/player?recording=christmas1986&t=45" {
		t.Errorf("PlayerLink whole seconds = %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:      "0:00",
		59.9:   "0:59",
		60:     "1:00",
		3725.2: "62:05",
	}
	for secs, want := range cases {
		if got := FormatTimestamp(secs); got != want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", secs, got, want)
		}
	}
}
