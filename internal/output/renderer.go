package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format selects how results are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Renderer writes command results in the selected format
type Renderer struct {
	w      io.Writer
	format Format
	p      *Printer
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer, format Format, color bool) *Renderer {
	return &Renderer{
		w:      w,
		format: format,
		p:      NewPrinter(w, color),
	}
}

// structured writes raw when set, otherwise the encoded fallback value
func (r *Renderer) structured(raw json.RawMessage, fallback interface{}) error {
	if len(raw) == 0 {
		encoded, err := jsonAPI.Marshal(fallback)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		raw = encoded
	}

	switch r.format {
	case FormatYAML:
		return writeYAML(r.w, raw)
	default:
		return writeJSON(r.w, raw)
	}
}

// writeJSON indents raw without reordering its keys
func writeJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// writeYAML re-emits a JSON document as block-style YAML, keeping key order
func writeYAML(w io.Writer, raw json.RawMessage) error {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("failed to convert result to YAML: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// indentJSON pretty-prints raw with every line prefixed by indent
func indentJSON(raw json.RawMessage, indent string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, indent, "  "); err != nil {
		return indent + string(raw)
	}
	return indent + buf.String()
}

// joinLimited joins at most limit items and reports how many were left out
func joinLimited(items []string, limit int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(items[:limit], ", "), len(items)-limit)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
