package voice

import (
	"context"
	"fmt"
	"strings"
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Translator renders text in the target language. It returns the text
// unchanged for English targets.
type Translator struct {
	completer Completer
}

func NewTranslator(c Completer) *Translator {
	return &Translator{completer: c}
}

func NeedsTranslation(language string) bool {
	return !strings.Contains(language, "English")
}

func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	if !NeedsTranslation(language) {
		return text, nil
	}
	prompt := fmt.Sprintf("Translate the following text accurately into %s. "+
		"Return only the translation, with no commentary, notes or quotation marks.\n\n%s", language, text)

	out, err := t.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", language, err)
	}
	return strings.TrimSpace(out), nil
}
