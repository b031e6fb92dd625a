// Package main generates the compile-time model descriptor table from
// internal/bootstrap/models.yaml.
//
// The YAML file is the single source of truth for built-in tables: the schema
// synchronizer reconciles the catalog against the generated table, and the
// bootstrap creates the physical relations from it.
//
// Usage: go run ./cmd/codegen
package main

import (
	"fmt"
	"go/format"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type modelFile struct {
	Models []model `yaml:"models"`
}

type model struct {
	Name           string     `yaml:"name"`
	Table          string     `yaml:"table"`
	Documentation  string     `yaml:"documentation"`
	UniqueTogether [][]string `yaml:"uniqueTogether"`
	Fields         []field    `yaml:"fields"`
}

type field struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	ID            bool   `yaml:"id"`
	Required      bool   `yaml:"required"`
	Unique        bool   `yaml:"unique"`
	Default       string `yaml:"default"`
	Documentation string `yaml:"documentation"`
}

const (
	sourcePath = "internal/bootstrap/models.yaml"
	outputPath = "internal/bootstrap/models_gen.go"
)

func main() {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v", sourcePath, err)
	}
	fmt.Printf("📖 Reading: %s\n", sourcePath)

	var mf modelFile
	if err := yaml.Unmarshal(content, &mf); err != nil {
		log.Fatalf("❌ Failed to parse YAML: %v", err)
	}
	if err := validate(mf.Models); err != nil {
		log.Fatalf("❌ Invalid model file: %v", err)
	}
	fmt.Printf("📊 Total Models: %d\n", len(mf.Models))

	src, err := format.Source(render(mf.Models))
	if err != nil {
		log.Fatalf("❌ Generated code does not compile: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		log.Fatalf("❌ Failed to create output dir: %v", err)
	}
	if err := os.WriteFile(outputPath, src, 0o644); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", outputPath, err)
	}
	fmt.Printf("✅ Generated: %s (%d bytes)\n", outputPath, len(src))
}

func validate(models []model) error {
	seen := make(map[string]bool)
	for _, m := range models {
		if m.Name == "" {
			return fmt.Errorf("model without name")
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate model %s", m.Name)
		}
		seen[m.Name] = true

		hasID := false
		for _, f := range m.Fields {
			if f.Name == "" || f.Type == "" {
				return fmt.Errorf("model %s has a field without name or type", m.Name)
			}
			hasID = hasID || f.ID
		}
		if !hasID {
			return fmt.Errorf("model %s has no id field", m.Name)
		}
	}
	return nil
}

func render(models []model) []byte {
	var sb strings.Builder

	sb.WriteString("// Code generated by cmd/codegen. DO NOT EDIT.\n")
	sb.WriteString("// Source: " + sourcePath + "\n\n")
	sb.WriteString("package bootstrap\n\n")
	sb.WriteString("// Models is the compile-time data model reconciled into the catalog by the\n")
	sb.WriteString("// schema synchronizer.\n")
	sb.WriteString("var Models = []ModelDescriptor{\n")

	for _, m := range models {
		sb.WriteString("{\n")
		fmt.Fprintf(&sb, "Name: %s,\n", strconv.Quote(m.Name))
		if m.Table != "" {
			fmt.Fprintf(&sb, "Table: %s,\n", strconv.Quote(m.Table))
		}
		if m.Documentation != "" {
			fmt.Fprintf(&sb, "Documentation: %s,\n", strconv.Quote(m.Documentation))
		}
		sb.WriteString("Fields: []FieldDescriptor{\n")
		for _, f := range m.Fields {
			sb.WriteString(renderField(f))
		}
		sb.WriteString("},\n")
		if len(m.UniqueTogether) > 0 {
			sb.WriteString("UniqueTogether: [][]string{")
			for i, cols := range m.UniqueTogether {
				if i > 0 {
					sb.WriteString(", ")
				}
				quoted := make([]string, len(cols))
				for j, c := range cols {
					quoted[j] = strconv.Quote(c)
				}
				sb.WriteString("{" + strings.Join(quoted, ", ") + "}")
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("},\n")
	}

	sb.WriteString("}\n")
	return []byte(sb.String())
}

func renderField(f field) string {
	parts := []string{
		"Name: " + strconv.Quote(f.Name),
		"Type: " + strconv.Quote(f.Type),
	}
	if f.ID {
		parts = append(parts, "IsID: true")
	}
	if f.Required {
		parts = append(parts, "IsRequired: true")
	}
	if f.Unique {
		parts = append(parts, "IsUnique: true")
	}
	if f.Default != "" {
		parts = append(parts, "Default: "+strconv.Quote(f.Default))
	}
	if f.Documentation != "" {
		parts = append(parts, "Documentation: "+strconv.Quote(f.Documentation))
	}
	return "{" + strings.Join(parts, ", ") + "},\n"
}
