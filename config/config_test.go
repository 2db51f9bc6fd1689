package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/generator"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Opcode.Base != 20000 {
		t.Errorf("opcode.base = %d", cfg.Opcode.Base)
	}
	if cfg.Prefix.Marshal != "marshal_" || cfg.Prefix.Unmarshal != "unmarshal_" || cfg.Prefix.UnmarshalInto != "unmarshal_into_" {
		t.Errorf("prefixes = %+v", cfg.Prefix)
	}
	if cfg.Stream.Type != "VulkanStream" {
		t.Errorf("stream.type = %q", cfg.Stream.Type)
	}
	if cfg.Generate.InPlaceReaders || cfg.Generate.CommandReplies {
		t.Errorf("generate = %+v", cfg.Generate)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("log = %+v", cfg.Log)
	}

	opts := cfg.GeneratorOptions()
	if opts != generator.DefaultOptions() {
		t.Errorf("default config should map to default options: %+v", opts)
	}
}

func TestLoad_Files(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "marshalgen.yaml",
			content: `
opcode:
  base: 30000
prefix:
  marshal: enc_
generate:
  command_replies: true
output:
  header: out/marshal.h
stream:
  type: Stream
log:
  format: json
`,
		},
		{
			name: "json",
			file: "marshalgen.json",
			content: `{
  "opcode": {"base": 30000},
  "prefix": {"marshal": "enc_"},
  "generate": {"command_replies": true},
  "output": {"header": "out/marshal.h"},
  "stream": {"type": "Stream"},
  "log": {"format": "json"}
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Opcode.Base != 30000 {
				t.Errorf("opcode.base = %d", cfg.Opcode.Base)
			}
			if cfg.Prefix.Marshal != "enc_" || cfg.Prefix.Unmarshal != "unmarshal_" {
				t.Errorf("prefixes = %+v", cfg.Prefix)
			}
			if !cfg.Generate.CommandReplies {
				t.Error("command_replies not applied")
			}

			opts := cfg.GeneratorOptions()
			if opts.OpcodeBase != 30000 || opts.MarshalPrefix != "enc_" || !opts.CommandReplies {
				t.Errorf("options = %+v", opts)
			}
			r := cfg.RenderOptions()
			if r.StreamType != "Stream" || r.HeaderName != "marshal.h" {
				t.Errorf("render options = %+v", r)
			}
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MARSHALGEN_OPCODE_BASE", "40000")
	t.Setenv("MARSHALGEN_GENERATE_IN_PLACE_READERS", "true")
	t.Setenv("MARSHALGEN_STREAM_TYPE", "EnvStream")

	path := writeFile(t, "c.yaml", "opcode:\n  base: 30000\nstream:\n  type: FileStream\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Opcode.Base != 40000 {
		t.Errorf("environment should override the file: base = %d", cfg.Opcode.Base)
	}
	if !cfg.Generate.InPlaceReaders {
		t.Error("in_place_readers not applied from environment")
	}
	if cfg.Stream.Type != "EnvStream" {
		t.Errorf("stream.type = %q", cfg.Stream.Type)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		kind    errors.Kind
	}{
		{name: "missing file", file: "", kind: errors.KindInvalidInput},
		{name: "bad yaml", file: "c.yaml", content: "opcode: [", kind: errors.KindInvalidInput},
		{name: "empty prefix", file: "c.yaml", content: "prefix:\n  marshal: \"\"\n", kind: errors.KindInvalidInput},
		{name: "colliding prefixes", file: "c.yaml", content: "prefix:\n  unmarshal_into: unmarshal_\n", kind: errors.KindInvalidInput},
		{name: "unknown level", file: "c.yaml", content: "log:\n  level: loud\n", kind: errors.KindInvalidInput},
		{name: "unknown format", file: "c.yaml", content: "log:\n  format: xml\n", kind: errors.KindInvalidInput},
		{name: "bad base", file: "c.yaml", content: "opcode:\n  base: lots\n", kind: errors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}
			_, err := Load(path)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: tt.kind}) {
				t.Errorf("got %v, want config %s error", err, tt.kind)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			cfg := Default()
			cfg.Log.Format = format
			cfg.Log.Level = "debug"
			log, err := cfg.Logger()
			if err != nil {
				t.Fatal(err)
			}
			if !log.Core().Enabled(-1) {
				t.Error("debug level not enabled")
			}
		})
	}
}
