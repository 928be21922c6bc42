package domain

import "strings"

// Confidence is the categorical estimate of whether a search result actually
// identifies the queried hotel. Consumers only branch on the three labels;
// there is deliberately no numeric score behind them.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FetchResult is the transient outcome of one adapter call. Adapters never
// return Go errors to the orchestrator: every failure mode ends up as a
// structurally valid result with Err set. Score fields and Err may coexist
// when a failure hit after partial extraction.
type FetchResult struct {
	Channel         Channel
	AverageScore    *float64
	NormalizedScore *float64
	TotalReviews    *int
	ChannelRef      *string
	URL             *string
	ResolvedName    *string // Google only: authoritative name for downstream searches
	Confidence      *Confidence
	Raw             []byte
	Err             *string
}

const notConfiguredTag = "missing credentials"

func (r FetchResult) Scored() bool { return r.AverageScore != nil }

func (r FetchResult) Failed() bool { return r.Err != nil }

// NotConfigured reports whether this is a synthetic "no credentials" result,
// which is surfaced to the caller but never persisted as a snapshot.
func (r FetchResult) NotConfigured() bool {
	return r.Err != nil && strings.Contains(*r.Err, notConfiguredTag)
}

func ErrorResult(c Channel, msg string) FetchResult {
	return FetchResult{Channel: c, Err: &msg}
}

// NotFoundResult marks the normal "this hotel is not on that platform" outcome.
func NotFoundResult(c Channel) FetchResult {
	return ErrorResult(c, "not found on "+string(c))
}

func NotConfiguredResult(c Channel) FetchResult {
	return ErrorResult(c, string(c)+": "+notConfiguredTag)
}
