package insight

import (
	"context"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type fakeMessager struct {
	params anthropic.MessageNewParams
	blocks []anthropic.ContentBlockUnion
}

func (f *fakeMessager) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return &anthropic.Message{Content: f.blocks}, nil
}

func TestNewAnthropicCallerFromEnvMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCallerFromEnv(); err == nil {
		t.Fatal("expected an error without ANTHROPIC_API_KEY")
	}
}

func TestGenerateJSONConcatenatesTextBlocks(t *testing.T) {
	fake := &fakeMessager{blocks: []anthropic.ContentBlockUnion{
		{Type: "text", Text: `{"overall_risk_level":`},
		{Type: "text", Text: `"High"}`},
	}}
	caller := &AnthropicCaller{messages: fake}

	out, err := caller.GenerateJSON(context.Background(), "system", "prompt")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out != `{"overall_risk_level":"High"}` {
		t.Fatalf("unexpected output: %q", out)
	}
	if fake.params.MaxTokens != 2000 {
		t.Fatalf("unexpected max tokens: %d", fake.params.MaxTokens)
	}
	if len(fake.params.System) != 1 || fake.params.System[0].Text != "system" {
		t.Fatalf("system prompt not forwarded: %+v", fake.params.System)
	}
	if fake.params.Temperature.Value != llmTemperature {
		t.Fatalf("unexpected temperature: %v", fake.params.Temperature)
	}
}
