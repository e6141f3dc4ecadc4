package domain

import "context"

// TextGenerator produces natural-language text from a prompt. Failures are
// expected and handled by the caller with fixed fallback strings; a single
// generation failure must never block sibling clusters.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MediaVerifier reports whether a media payload matches a natural-language
// description. Used as a pass/fail gate on user-submitted reports before
// they enter the pipeline; an error gates closed.
type MediaVerifier interface {
	VerifyMedia(ctx context.Context, media []byte, mimeType, description string) (bool, error)
}
