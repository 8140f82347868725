package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/justyntemme/thumbnav/internal/browser"
	"github.com/justyntemme/thumbnav/internal/config"
	"github.com/justyntemme/thumbnav/internal/thumbnail"
)

type testEnv struct {
	root     string
	work     string
	cacheDir string
	cfgPath  string
}

// newTestEnv lays out a config, cache and store under one temp dir and a
// work dir holding sub/ and a.txt.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	root := t.TempDir()
	te := testEnv{
		root:     root,
		work:     filepath.Join(root, "work"),
		cacheDir: filepath.Join(root, "cache"),
		cfgPath:  filepath.Join(root, "config.json"),
	}

	cfg := config.DefaultConfig()
	cfg.Thumbnails.CacheDir = te.cacheDir
	cfg.Store.Path = filepath.Join(root, "thumbnav.db")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(te.cfgPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(te.work, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(te.work, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	return te
}

func (te testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return te.runContext(context.Background(), stdin, args...)
}

func (te testEnv) runContext(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", te.cfgPath}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLs(t *testing.T) {
	te := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(te.work, ".secret"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := te.run(t, "", "--dir", te.work, "ls", "-l")
	if err != nil {
		t.Fatalf("ls: %v\n%s", err, out)
	}
	if !strings.Contains(out, te.work) {
		t.Errorf("expected directory header, got:\n%s", out)
	}
	parent, sub, file := strings.Index(out, "../"), strings.Index(out, "sub/"), strings.Index(out, "a.txt")
	if parent < 0 || sub < 0 || file < 0 {
		t.Fatalf("missing entries in:\n%s", out)
	}
	if !(parent < sub && sub < file) {
		t.Errorf("expected .., then sub/, then a.txt:\n%s", out)
	}
	if !strings.Contains(out, "5 B") {
		t.Errorf("expected humanized size of a.txt:\n%s", out)
	}
	if strings.Contains(out, ".secret") {
		t.Errorf("hidden file listed without -a:\n%s", out)
	}

	out, err = te.run(t, "", "--dir", te.work, "-a", "ls")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".secret") {
		t.Errorf("expected hidden file with -a:\n%s", out)
	}
}

func TestOpen_RestoresLastPath(t *testing.T) {
	te := newTestEnv(t)
	sub := filepath.Join(te.work, "sub")

	out, err := te.run(t, "", "--dir", te.work, "open", "1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if strings.TrimSpace(out) != sub {
		t.Errorf("expected %s, got %q", sub, out)
	}

	out, err = te.run(t, "", "ls")
	if err != nil {
		t.Fatal(err)
	}
	if first := strings.SplitN(out, "\n", 2)[0]; first != sub {
		t.Errorf("expected listing of restored %s, got header %q", sub, first)
	}
}

func TestOpen_Errors(t *testing.T) {
	te := newTestEnv(t)

	_, err := te.run(t, "", "--dir", te.work, "open", "42")
	if !errors.Is(err, browser.ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}
	_, err = te.run(t, "", "--dir", te.work, "open", "missing")
	if !errors.Is(err, browser.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = te.run(t, "", "--dir", filepath.Join(te.root, "nope"), "ls")
	if !errors.Is(err, browser.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing start dir, got %v", err)
	}
}

func TestCp(t *testing.T) {
	te := newTestEnv(t)
	dest := filepath.Join(te.root, "dest")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := te.run(t, "", "--dir", te.work, "cp", "a.txt", dest); err != nil {
		t.Fatalf("cp: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	if err != nil || string(data) != "alpha" {
		t.Fatalf("copy content = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(te.work, "a.txt")); err != nil {
		t.Errorf("source removed by copy: %v", err)
	}

	_, err = te.run(t, "", "--dir", te.work, "cp", "a.txt", dest)
	if !errors.Is(err, browser.ErrExists) {
		t.Errorf("expected ErrExists on second copy, got %v", err)
	}

	// Index 1 is sub/
	if _, err := te.run(t, "", "--dir", te.work, "cp", "--cut", "1", dest); err != nil {
		t.Fatalf("cp --cut: %v", err)
	}
	if _, err := os.Stat(filepath.Join(te.work, "sub")); !os.IsNotExist(err) {
		t.Errorf("expected sub/ moved away, stat err = %v", err)
	}
	if info, err := os.Stat(filepath.Join(dest, "sub")); err != nil || !info.IsDir() {
		t.Errorf("expected dest/sub directory: %v", err)
	}
}

func TestCp_ParentRefused(t *testing.T) {
	te := newTestEnv(t)
	_, err := te.run(t, "", "--dir", te.work, "cp", "0", te.root)
	if !errors.Is(err, browser.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for .., got %v", err)
	}
}

func TestMv(t *testing.T) {
	te := newTestEnv(t)

	// Index 2 is a.txt
	if _, err := te.run(t, "", "--dir", te.work, "mv", "2", "sub"); err != nil {
		t.Fatalf("mv: %v", err)
	}
	if _, err := os.Stat(filepath.Join(te.work, "sub", "a.txt")); err != nil {
		t.Errorf("expected sub/a.txt: %v", err)
	}

	_, err := te.run(t, "", "--dir", te.work, "mv", "sub/a.txt", "sub")
	if !errors.Is(err, browser.ErrExists) {
		t.Errorf("expected ErrExists moving into its own directory, got %v", err)
	}
}

func TestRename(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("rename is only supported on linux")
	}
	te := newTestEnv(t)

	if _, err := te.run(t, "", "--dir", te.work, "rename", "2", "b.txt"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := os.Stat(filepath.Join(te.work, "b.txt")); err != nil {
		t.Errorf("expected b.txt: %v", err)
	}

	_, err := te.run(t, "", "--dir", te.work, "rename", "2", "sub")
	if !errors.Is(err, browser.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := te.run(t, "", "--dir", te.work, "rename", "x", "y"); err == nil {
		t.Error("expected an error for a non-index argument")
	}
}

func TestThumbAndCache(t *testing.T) {
	te := newTestEnv(t)
	pic := filepath.Join(te.work, "pic.png")
	writePNG(t, pic, 400, 300)

	out, err := te.run(t, "", "--dir", te.work, "thumb", "pic.png")
	if err != nil {
		t.Fatalf("thumb: %v", err)
	}
	thumb := strings.TrimSpace(out)
	key, _ := thumbnail.Key(pic)
	if thumb != filepath.Join(te.cacheDir, key+".png") {
		t.Errorf("unexpected thumbnail path %q", thumb)
	}
	if _, err := os.Stat(thumb); err != nil {
		t.Fatalf("thumbnail not written: %v", err)
	}

	out, err = te.run(t, "", "cache", "ls")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, pic) || !strings.Contains(out, "image") {
		t.Errorf("cache ls missing entry:\n%s", out)
	}

	out, err = te.run(t, "", "cache", "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 files") || !strings.Contains(out, "1 indexed") {
		t.Errorf("unexpected stats: %s", out)
	}

	out, err = te.run(t, "", "cache", "purge")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "removed 1 thumbnails") {
		t.Errorf("unexpected purge output: %s", out)
	}
	if _, err := os.Stat(thumb); !os.IsNotExist(err) {
		t.Errorf("thumbnail survived purge: %v", err)
	}
}

func TestThumb_Output(t *testing.T) {
	te := newTestEnv(t)
	pic := filepath.Join(te.work, "pic.png")
	writePNG(t, pic, 50, 50)
	dst := filepath.Join(te.root, "out.png")

	out, err := te.run(t, "", "--dir", te.work, "thumb", "-o", dst, "pic.png")
	if err != nil {
		t.Fatalf("thumb -o: %v", err)
	}
	if strings.TrimSpace(out) != dst {
		t.Errorf("expected %s, got %q", dst, out)
	}
	entries, _ := os.ReadDir(te.cacheDir)
	if len(entries) != 0 {
		t.Errorf("thumb -o should not touch the cache, found %d files", len(entries))
	}
}

func TestThumb_Unsupported(t *testing.T) {
	te := newTestEnv(t)
	_, err := te.run(t, "", "--dir", te.work, "thumb", "a.txt")
	if !errors.Is(err, thumbnail.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestShell(t *testing.T) {
	te := newTestEnv(t)

	script := strings.Join([]string{
		"copy 2",
		"cd sub",
		"paste",
		"clip",
		"bogus",
		"quit",
	}, "\n")
	out, err := te.run(t, script, "--dir", te.work, "shell")
	if err != nil {
		t.Fatalf("shell: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(te.work, "sub", "a.txt")); err != nil {
		t.Errorf("expected paste into sub: %v", err)
	}
	if !strings.Contains(out, "clipboard empty") {
		t.Errorf("expected clipboard cleared after paste:\n%s", out)
	}
	if !strings.Contains(out, `unknown command "bogus"`) {
		t.Errorf("expected error for unknown command:\n%s", out)
	}
}

func TestShell_PasteEmpty(t *testing.T) {
	te := newTestEnv(t)
	out, err := te.run(t, "paste\n", "--dir", te.work, "shell")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "clipboard is empty") && !strings.Contains(out, "error:") {
		t.Errorf("expected paste error:\n%s", out)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := te.runContext(ctx, "", "--dir", te.work, "watch")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !strings.Contains(out, "a.txt") {
		t.Errorf("expected initial listing:\n%s", out)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{"-1", 0, false},
		{"a.txt", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseIndex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseIndex(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLs_Argument(t *testing.T) {
	te := newTestEnv(t)
	sub := filepath.Join(te.work, "sub")
	if err := os.WriteFile(filepath.Join(sub, "inner.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := te.run(t, "", "--dir", te.work, "ls", "sub")
	if err != nil {
		t.Fatalf("ls sub: %v", err)
	}
	if first := strings.SplitN(out, "\n", 2)[0]; first != sub || !strings.Contains(out, "inner.txt") {
		t.Errorf("expected listing of %s:\n%s", sub, out)
	}

	// Listing a file must not hand it to the opener
	_, err = te.run(t, "", "--dir", te.work, "ls", "a.txt")
	if !errors.Is(err, browser.ErrNotDir) {
		t.Errorf("expected ErrNotDir, got %v", err)
	}

	// Neither call moves the remembered directory
	out, err = te.run(t, "", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "last_path") {
		t.Errorf("ls must not persist a last path:\n%s", out)
	}
}

func TestConfig_SetAndShow(t *testing.T) {
	te := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(te.work, ".secret"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := te.run(t, "", "config", "set", "hidden", "on"); err != nil {
		t.Fatalf("config set hidden: %v", err)
	}
	out, err := te.run(t, "", "--dir", te.work, "ls")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".secret") {
		t.Errorf("expected hidden entries after config set hidden on:\n%s", out)
	}

	newCache := filepath.Join(te.root, "other-cache")
	if _, err := te.run(t, "", "config", "set", "cache-dir", newCache); err != nil {
		t.Fatalf("config set cache-dir: %v", err)
	}
	out, err = te.run(t, "", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{newCache, `"showHidden": true`, "show_hidden = true"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := te.run(t, "", "config", "set", "hidden", "maybe"); err == nil {
		t.Error("expected an error for an invalid switch value")
	}
	if _, err := te.run(t, "", "config", "set", "colour", "red"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestConfig_Init(t *testing.T) {
	te := newTestEnv(t)

	out, err := te.run(t, "", "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "backup: ") || !strings.Contains(out, "wrote "+te.cfgPath) {
		t.Errorf("unexpected output:\n%s", out)
	}

	cfg := config.DefaultConfig()
	data, err := os.ReadFile(te.cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	var got config.Config
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Thumbnails.CacheDir != cfg.Thumbnails.CacheDir {
		t.Errorf("expected default cache dir %s, got %s", cfg.Thumbnails.CacheDir, got.Thumbnails.CacheDir)
	}
}

func TestMv_DigitName(t *testing.T) {
	te := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(te.work, "3"), []byte("three"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Listing is .., sub, 3, a.txt: a bare 3 means a.txt
	if _, err := te.run(t, "", "--dir", te.work, "mv", "3", "sub"); err != nil {
		t.Fatalf("mv 3: %v", err)
	}
	if _, err := os.Stat(filepath.Join(te.work, "sub", "a.txt")); err != nil {
		t.Errorf("expected index 3 to move a.txt: %v", err)
	}

	if _, err := te.run(t, "", "--dir", te.work, "mv", "./3", "sub"); err != nil {
		t.Fatalf("mv ./3: %v", err)
	}
	if _, err := os.Stat(filepath.Join(te.work, "sub", "3")); err != nil {
		t.Errorf("expected the file named 3 in sub: %v", err)
	}
}

func TestWriteColumns_IgnoresEscapes(t *testing.T) {
	bold := "\x1b[1mab\x1b[0m"
	var out bytes.Buffer
	writeColumns(&out, [][]string{
		{bold, "x"},
		{"abcd", "y"},
	})

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}
	if lines[0] != bold+"    x" {
		t.Errorf("styled cell padded by byte length: %q", lines[0])
	}
	if lines[1] != "abcd  y" {
		t.Errorf("unexpected plain row: %q", lines[1])
	}
}
