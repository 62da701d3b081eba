package telemetry

import (
	"log/slog"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codec     tokenizer.Codec
	codecErr  error
	codecOnce sync.Once
)

// CountTokens reports the size of a source document in cl100k_base tokens,
// which is how the per-1M-token prices it carries are usually read.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}

	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if codecErr != nil {
		slog.Warn("Failed to load tokenizer, using character estimation",
			"error", codecErr,
		)
		return estimateTokensByChars(text)
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		slog.Warn("Failed to encode text, using character estimation",
			"error", err,
		)
		return estimateTokensByChars(text)
	}

	return len(ids)
}

// estimateTokensByChars uses ~4 characters per token.
func estimateTokensByChars(text string) int {
	return (len(text) + 3) / 4
}
