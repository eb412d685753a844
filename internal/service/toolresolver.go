package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/domain/chat"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/intent"
	"github.com/solvik/agenthub/internal/domain/tool"
	"github.com/solvik/agenthub/internal/port/completion"
	"github.com/solvik/agenthub/internal/port/toolcatalog"
)

// toolFallbackReply is returned when the model's tool selection cannot be
// parsed. The turn degrades to a fixed reply instead of failing.
const toolFallbackReply = "I'm currently unable to process that request. Please try again or rephrase it."

// toolSelectData provides data for the tool selection prompt template.
type toolSelectData struct {
	AgentName string
	Catalog   string
}

// toolSynthData provides data for the tool synthesis prompt template.
type toolSynthData struct {
	AgentName      string
	BehaviorPrompt string
	ToolResult     string
}

// ToolResolver handles structured queries for agents with a tool server:
// it lists the server's tools, asks the completion model to pick one,
// invokes it, and synthesizes a user-facing answer from the result.
type ToolResolver struct {
	llm     completion.Service
	catalog toolcatalog.Client
	orchCfg *config.Orchestrator
	logger  *slog.Logger
}

// NewToolResolver creates a ToolResolver.
func NewToolResolver(llm completion.Service, catalog toolcatalog.Client, orchCfg *config.Orchestrator, logger *slog.Logger) *ToolResolver {
	return &ToolResolver{llm: llm, catalog: catalog, orchCfg: orchCfg, logger: logger}
}

// Resolve runs the full tool pipeline for one structured query. Only
// catalog discovery and the selection call itself are errors; an
// unparseable selection or a failed synthesis degrades to a fixed reply,
// and an invocation failure degrades to synthesis over an empty result.
func (t *ToolResolver) Resolve(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string) (*chat.Envelope, error) {
	env := chat.NewEnvelope("", string(intent.StructuredQuery), message)

	descriptors, err := t.catalog.ListTools(ctx, profile.ToolServerURL)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	if len(descriptors) == 0 {
		t.logger.Warn("tool server advertises no tools", "agent_id", profile.ID, "server_url", profile.ToolServerURL)
		env.FinalText = toolFallbackReply
		return env, nil
	}

	sel, resp, err := t.SelectTool(ctx, profile, history, message, descriptors)
	if err != nil {
		return nil, err
	}
	env.AddUsage(resp.TokensIn, resp.TokensOut)
	if sel == nil {
		// Selection did not parse; the fallback is a product decision,
		// not an error path.
		env.FinalText = toolFallbackReply
		return env, nil
	}

	result, err := t.invoke(ctx, profile.ToolServerURL, sel)
	if err != nil {
		t.logger.Warn("tool invocation failed", "agent_id", profile.ID, "tool", sel.ToolName, "error", err)
		result = ""
	}

	synth, err := t.Synthesize(ctx, profile, history, message, result)
	if err != nil {
		t.logger.Warn("tool synthesis failed", "agent_id", profile.ID, "tool", sel.ToolName, "error", err)
		env.FinalText = toolFallbackReply
		return env, nil
	}
	env.FinalText = synth.Content
	env.AddUsage(synth.TokensIn, synth.TokensOut)
	return env, nil
}

// SelectTool asks the completion model to pick a tool from descriptors. A
// selection that fails to parse returns a nil Selection with a nil error;
// only completion or prompt failures are errors.
func (t *ToolResolver) SelectTool(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string, descriptors []tool.Descriptor) (*tool.Selection, *completion.Response, error) {
	systemPrompt, err := renderPrompt("tool_select.tmpl", toolSelectData{
		AgentName: profile.Name,
		Catalog:   tool.RenderCatalog(descriptors),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("render tool selection prompt: %w", err)
	}

	resp, err := t.llm.Complete(ctx, completion.Request{
		Messages:    promptMessages(systemPrompt, history, message),
		Temperature: 0,
		MaxTokens:   256,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("select tool: %w", err)
	}

	sel, err := tool.ParseSelection(resp.Content)
	if err != nil {
		t.logger.Warn("tool selection did not parse", "agent_id", profile.ID, "error", err, "output", truncate(resp.Content, 120))
		return nil, resp, nil
	}
	return sel, resp, nil
}

// Synthesize turns a raw tool result into a user-facing answer.
func (t *ToolResolver) Synthesize(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message, toolResult string) (*completion.Response, error) {
	systemPrompt, err := renderPrompt("tool_synthesize.tmpl", toolSynthData{
		AgentName:      profile.Name,
		BehaviorPrompt: profile.BehaviorPrompt,
		ToolResult:     toolResult,
	})
	if err != nil {
		return nil, fmt.Errorf("render tool synthesis prompt: %w", err)
	}

	resp, err := t.llm.Complete(ctx, completion.Request{
		Messages:    promptMessages(systemPrompt, history, message),
		Temperature: t.orchCfg.Temperature,
		MaxTokens:   t.orchCfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize tool result: %w", err)
	}
	return resp, nil
}

func (t *ToolResolver) invoke(ctx context.Context, serverURL string, sel *tool.Selection) (string, error) {
	timeout := t.orchCfg.ToolTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return t.catalog.Invoke(ctx, serverURL, sel.ToolName, sel.Arguments)
}
