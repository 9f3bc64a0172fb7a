package app

import (
	"context"
	"fmt"
	"strings"
)

// Generate forwards prompt to the configured text generator.
func (a *App) Generate(ctx context.Context, prompt string) (string, error) {
	if a.generator == nil {
		return "", ErrFeatureDisabled
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}
	text, err := a.generator.GenerateText(ctx, "", prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return text, nil
}
