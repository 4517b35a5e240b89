// Package gemini implements generation.Generator on Google's Gemini API
// through the google.golang.org/genai client.
//
// Each Generate call is a single request: retries, backoff and the attempt
// budget belong to the worker that calls it. NewGenerator falls back to the
// offline placeholder when no API key is configured.
package gemini
