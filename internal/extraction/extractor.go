package extraction

import (
	"context"
	"strings"

	"ai-receptionist/pkg/logger"
)

// Observer is told why an extraction fell back. metrics.Collector satisfies it.
type Observer interface {
	ExtractionFallback(reason string)
}

// Extractor turns a transcript into an Extraction using a language model.
type Extractor struct {
	completer Completer
	observer  Observer
}

func NewExtractor(c Completer, obs Observer) *Extractor {
	return &Extractor{completer: c, observer: obs}
}

// Extract never fails: on model errors or output that does not validate it
// returns Degraded(transcript, callerPhone).
func (e *Extractor) Extract(ctx context.Context, transcript, callerPhone string, cc ContractorContext) Extraction {
	log := logger.From(ctx)
	if strings.TrimSpace(transcript) == "" {
		return Degraded(transcript, callerPhone)
	}

	system, user := BuildPrompt(transcript, callerPhone, cc)
	raw, err := e.completer.Complete(ctx, system, user)
	if err != nil {
		log.Warn("extraction completion failed", "error", err)
		e.fallback("provider_error")
		return Degraded(transcript, callerPhone)
	}

	x, err := Parse(raw, transcript, callerPhone)
	if err != nil {
		log.Warn("extraction output rejected", "error", err)
		e.fallback("invalid_output")
		return Degraded(transcript, callerPhone)
	}
	return x
}

func (e *Extractor) fallback(reason string) {
	if e.observer != nil {
		e.observer.ExtractionFallback(reason)
	}
}
