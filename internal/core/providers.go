package core

import "context"

// Generator produces a natural-language reply for a fully assembled prompt.
// Calls may be slow and may fail transiently; the orchestrator enforces the
// timeout and degradation policy.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a vector comparable by cosine distance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever is the semantic search collaborator. itemType filters by
// ItemTypeProduct/ItemTypeService; empty string means no filter. Results come
// back ordered by ascending distance, at most k of them, and an empty corpus
// yields an empty slice rather than an error.
type Retriever interface {
	Search(ctx context.Context, query, itemType string, k int) ([]RetrievalResult, error)
}
