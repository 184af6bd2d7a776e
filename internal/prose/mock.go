package prose

import "context"

// MockClient is a test double for the Client interface.
type MockClient struct {
	Response string
	JSON     string
	Err      error
	Calls    []string // records prompts sent
}

// Complete records the call and returns the mock response.
func (m *MockClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	return m.Response, m.Err
}

// CompleteJSON records the call and returns the mock JSON payload.
func (m *MockClient) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	return m.JSON, m.Err
}
