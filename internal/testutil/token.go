package testutil

// ConstantTokenGenerator generates the same batch token every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with the same ConstantTokenGenerator produces
// byte-identical resolution traces.
//
// Unlike resolver.FixedGenerator, which returns tokens in sequence, this
// generator always returns the same token. This is useful for scenarios
// where every batch should share the same token.
//
// Thread-safety: ConstantTokenGenerator is stateless and safe for
// concurrent use.
type ConstantTokenGenerator struct {
	token string
}

// NewConstantTokenGenerator creates a new constant batch token generator.
//
// The token is typically set in the scenario YAML:
//
//	batch_token: "test-batch-00000000-0000-0000-0000-000000000001"
//
// If token is empty, Generate() returns "test-batch-default".
func NewConstantTokenGenerator(token string) *ConstantTokenGenerator {
	if token == "" {
		token = "test-batch-default"
	}
	return &ConstantTokenGenerator{token: token}
}

// Generate returns the fixed batch token.
//
// Implements resolver.TokenGenerator.
func (g *ConstantTokenGenerator) Generate() string {
	return g.token
}
