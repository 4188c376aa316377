// Package providers implements the model backends an evaluation can call.
//
// Supported providers: OpenAI, Anthropic, Google (Gemini, via the genai
// SDK), Ollama / LM Studio for local models, and a generic custom endpoint.
//
// Backends are collected in an explicit [Registry] built by [NewRegistry]
// and handed to the evaluator. Each backend makes exactly one request per
// call; failures are returned as typed errors (see [IsAuthError]) and never
// retried. HTTP clients are held in unexported fields so that tests can
// redirect calls to local httptest servers.
package providers
