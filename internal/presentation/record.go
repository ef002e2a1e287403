package presentation

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"copydir/internal/domain"
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q, use text or yaml", value)
	}
}

// RenderRecord writes a record either in .info layout or as a YAML mapping
// that keeps the record's field order.
func RenderRecord(w io.Writer, record domain.FileRecord, format Format) error {
	if format != FormatYAML {
		_, err := io.WriteString(w, record.InfoText())
		return err
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range record.Fields() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}
