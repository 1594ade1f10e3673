// Package models defines the data structures exchanged over the API.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// Nothing here is persisted; every value lives for one request.
package models

// AnalysisResult is the uniform envelope returned by POST /analyze.
// Exactly one of Result or Error is populated, chosen by Success.
type AnalysisResult struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded builds a success envelope.
func Succeeded(result string) AnalysisResult {
	return AnalysisResult{Success: true, Result: result}
}

// Failed builds an error envelope.
func Failed(message string) AnalysisResult {
	return AnalysisResult{Success: false, Error: message}
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	LLMConfigured bool   `json:"llm_configured"`
	Model         string `json:"model"`
}
