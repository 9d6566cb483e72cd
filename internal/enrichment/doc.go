// Package enrichment defines the contract for external language-model
// enrichment of vocabulary words, and the bounded-concurrency controller
// that drains submitted words through it. It abstracts the details of LLM
// API integration (Gemini, OpenAI-compatible), allowing the application to
// enrich words without coupling to specific external services.
package enrichment
