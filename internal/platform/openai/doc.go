// Package openai implements the enrichment.Enricher interface against any
// OpenAI-compatible chat-completions endpoint: the hosted OpenAI API, vLLM,
// LiteLLM proxies or other local servers exposing the same REST shape.
package openai
