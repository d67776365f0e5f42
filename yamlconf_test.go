package yamlconf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/mscno/yamlconf/pkg/fileutils"
	"github.com/mscno/yamlconf/pkg/format"
	"github.com/mscno/yamlconf/pkg/store"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "'/var/storm'", Escape("/var/storm"))
	assert.Equal(t, "6627", Escape("6627"))
	assert.Equal(t, "Off", Escape("Off"))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		format      FileFormat
		opts        RenderOptions
		want        string
		expectError string
	}{
		{
			name:   "dotenv",
			data:   "B=1\nA=hello\n",
			format: FileFormatEnv,
			want:   "B: 1\nA: 'hello'\n",
		},
		{
			name:   "json sorted",
			data:   `{"b": 1, "a": "hello"}`,
			format: FileFormatJson,
			opts:   RenderOptions{SortKeys: true, Verify: true},
			want:   "a: 'hello'\nb: 1\n",
		},
		{
			name:   "toml with table",
			data:   "[nimbus]\nhost = \"n1\"\n",
			format: FileFormatToml,
			want:   "nimbus.host: 'n1'\n",
		},
		{
			name:   "yml header",
			data:   "a: yes\n",
			format: FileFormatYml,
			opts:   RenderOptions{Header: "generated"},
			want:   "# generated\na: yes\n",
		},
		{
			name:        "unsupported format",
			data:        "a=b",
			format:      ".ini",
			expectError: "unsupported format",
		},
		{
			name:        "nested value",
			data:        `{"a": {"b": 1}}`,
			format:      FileFormatJson,
			expectError: format.ErrNotScalar.Error(),
		},
		{
			name:        "verify catches broken key",
			data:        `{"a: b": "c"}`,
			format:      FileFormatJson,
			opts:        RenderOptions{Verify: true},
			expectError: "failed verification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render([]byte(tt.data), tt.format, tt.opts)
			if tt.expectError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, ".env.prod")
	assert.NoError(t, os.WriteFile(src, []byte("nimbus.seeds=['n1','n2']\n"), 0o600))

	out, err := RenderFile(src, RenderOptions{Verify: true})
	assert.NoError(t, err)
	assert.Equal(t, "nimbus.seeds: ['n1','n2']\n", string(out))

	_, err = RenderFile(filepath.Join(dir, "missing.json"), RenderOptions{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	confDir := filepath.Join(dir, "conf")
	assert.NoError(t, os.Mkdir(confDir, 0o755))
	src := writeSource(t, dir, "storm.json", `{"storm.local.dir": "/var/storm", "nimbus.thrift.port": 6627}`)
	ledger := store.NewMemoryStore()

	cfg := GenerateConfig{
		Source:    src,
		ConfDir:   confDir,
		Filename:  "storm.yaml",
		Ownership: fileutils.Ownership{Mode: 0o640},
		Store:     ledger,
	}

	res, err := Generate(context.Background(), cfg)
	assert.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, filepath.Join(confDir, "storm.yaml"), res.Target)

	data, err := os.ReadFile(res.Target)
	assert.NoError(t, err)
	assert.Equal(t, "storm.local.dir: '/var/storm'\nnimbus.thrift.port: 6627\n", string(data))

	info, err := os.Stat(res.Target)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	gen, err := ledger.Get(res.Target)
	assert.NoError(t, err)
	assert.Equal(t, src, gen.Source)
	assert.Equal(t, res.Checksum, gen.Checksum)
	assert.Equal(t, os.FileMode(0o640), gen.Mode)
	assert.True(t, gen.Changed)

	// same content a second time leaves the file alone
	res, err = Generate(context.Background(), cfg)
	assert.NoError(t, err)
	assert.False(t, res.Changed)
	gen, err = ledger.Get(res.Target)
	assert.NoError(t, err)
	assert.False(t, gen.Changed)
}

func TestGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, ".env", "A=1\n")
	ledger := store.NewMemoryStore()

	res, err := Generate(context.Background(), GenerateConfig{
		Source:   src,
		ConfDir:  dir,
		Filename: "out.yml",
		DryRun:   true,
		Store:    ledger,
	})
	assert.NoError(t, err)
	assert.Equal(t, "A: 1\n", string(res.Document))
	assert.False(t, res.Changed)

	_, err = os.Stat(filepath.Join(dir, "out.yml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	list, err := ledger.List()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(list))
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.yaml", "a: b\n")
	bad := writeSource(t, dir, "bad.json", `{"a b: c": 1}`)

	tests := []struct {
		name        string
		cfg         GenerateConfig
		expectError string
	}{
		{
			name:        "missing conf dir",
			cfg:         GenerateConfig{Source: src, Filename: "x.yaml"},
			expectError: "config directory is required",
		},
		{
			name:        "conf dir does not exist",
			cfg:         GenerateConfig{Source: src, ConfDir: filepath.Join(dir, "nope"), Filename: "x.yaml"},
			expectError: "config directory",
		},
		{
			name:        "bad filename",
			cfg:         GenerateConfig{Source: src, ConfDir: dir, Filename: "x.txt"},
			expectError: "must end in .yaml or .yml",
		},
		{
			name:        "format override",
			cfg:         GenerateConfig{Source: src, Format: FileFormatJson, ConfDir: dir, Filename: "x.yaml"},
			expectError: "invalid json",
		},
		{
			name:        "rendered document does not verify",
			cfg:         GenerateConfig{Source: bad, ConfDir: dir, Filename: "x.yaml"},
			expectError: "failed verification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(context.Background(), tt.cfg)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "x.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGenerateCanceled(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src.yaml", "a: b\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, GenerateConfig{Source: src, ConfDir: dir, Filename: "x.yaml"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReadEntriesKeepsOrder(t *testing.T) {
	entries, err := ReadEntries([]byte("z = 1\na = 2\n"), FileFormatToml)
	assert.NoError(t, err)
	assert.Equal(t, "z,a", strings.Join(format.Keys(entries), ","))
}
