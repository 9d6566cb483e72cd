// Package gemini implements the enrichment.Enricher interface using
// Google's Gemini API to generate example sentences, cloze questions and
// answer evaluations for vocabulary words.
package gemini
