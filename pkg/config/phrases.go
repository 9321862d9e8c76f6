package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-go/vai-assistant/pkg/core/session"
)

// LoadPhrases returns the default phrase book overlaid with the YAML file at
// path. Lists in the file replace the defaults, selection word maps are
// merged into them, and omitted messages keep their default text. An empty
// path returns the defaults.
func LoadPhrases(path string) (session.Phrases, error) {
	phrases := session.DefaultPhrases()
	if strings.TrimSpace(path) == "" {
		return phrases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return session.Phrases{}, fmt.Errorf("read phrases: %w", err)
	}
	if err := decodePhrases(data, &phrases); err != nil {
		return session.Phrases{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := phrases.Validate(); err != nil {
		return session.Phrases{}, err
	}
	return phrases, nil
}

func decodePhrases(data []byte, into *session.Phrases) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
