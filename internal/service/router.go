package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/domain/chat"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/intent"
	"github.com/solvik/agenthub/internal/port/completion"
)

// unclearReply is returned for UNCLEAR intents without a completion call.
const unclearReply = "I'm not sure what you're asking for. Could you rephrase your request?"

// skillData provides data for the per-skill prompt templates.
type skillData struct {
	AgentName      string
	BehaviorPrompt string
	Context        string
}

// SkillRouter dispatches a classified message to the matching skill and
// assembles the response envelope. The intent set is closed: an intent
// with no mapped skill yields an envelope with empty final text rather
// than an error.
type SkillRouter struct {
	llm       completion.Service
	retrieval *RetrievalService
	tools     *ToolResolver
	orchCfg   *config.Orchestrator
	logger    *slog.Logger
}

// NewSkillRouter creates a SkillRouter.
func NewSkillRouter(llm completion.Service, retrieval *RetrievalService, tools *ToolResolver, orchCfg *config.Orchestrator, logger *slog.Logger) *SkillRouter {
	return &SkillRouter{
		llm:       llm,
		retrieval: retrieval,
		tools:     tools,
		orchCfg:   orchCfg,
		logger:    logger,
	}
}

// Route executes the skill mapped to in and returns the filled envelope.
func (r *SkillRouter) Route(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string, in intent.Intent) (*chat.Envelope, error) {
	switch in {
	case intent.Greeting:
		return r.greet(ctx, profile, history, message)
	case intent.StructuredQuery:
		if profile.ToolServerURL != "" {
			return r.tools.Resolve(ctx, profile, history, message)
		}
		return r.answerStructured(ctx, profile, history, message)
	case intent.KnowledgeQuery:
		return r.answerFromKnowledge(ctx, profile, history, message)
	case intent.Unclear:
		return chat.NewEnvelope(unclearReply, string(in), message), nil
	default:
		// Closed intent set: nothing to do for an unmapped label.
		r.logger.Warn("no skill mapped for intent", "intent", in, "agent_id", profile.ID)
		return chat.NewEnvelope("", string(in), message), nil
	}
}

func (r *SkillRouter) greet(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string) (*chat.Envelope, error) {
	return r.oneShot(ctx, "greeting.tmpl", skillData{
		AgentName:      profile.Name,
		BehaviorPrompt: profile.BehaviorPrompt,
	}, history, message, intent.Greeting)
}

func (r *SkillRouter) answerStructured(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string) (*chat.Envelope, error) {
	// Without a tool server the structured skill falls back to grounding
	// the answer in the agent's knowledge base, if it has one.
	grounding, err := r.retrieval.Retrieve(ctx, profile.ID, message)
	if err != nil {
		r.logger.Warn("retrieval failed for structured query", "agent_id", profile.ID, "error", err)
		grounding = ""
	}
	return r.oneShot(ctx, "structured_query.tmpl", skillData{
		AgentName:      profile.Name,
		BehaviorPrompt: profile.BehaviorPrompt,
		Context:        grounding,
	}, history, message, intent.StructuredQuery)
}

func (r *SkillRouter) answerFromKnowledge(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string) (*chat.Envelope, error) {
	grounding, err := r.retrieval.Retrieve(ctx, profile.ID, message)
	if err != nil {
		return nil, fmt.Errorf("retrieve knowledge: %w", err)
	}
	return r.oneShot(ctx, "knowledge_answer.tmpl", skillData{
		AgentName:      profile.Name,
		BehaviorPrompt: profile.BehaviorPrompt,
		Context:        grounding,
	}, history, message, intent.KnowledgeQuery)
}

// oneShot renders the named template as system prompt, runs a single
// completion call, and wraps the result in an envelope.
func (r *SkillRouter) oneShot(ctx context.Context, tmpl string, data skillData, history []conversation.Turn, message string, in intent.Intent) (*chat.Envelope, error) {
	systemPrompt, err := renderPrompt(tmpl, data)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl, err)
	}

	resp, err := r.llm.Complete(ctx, completion.Request{
		Messages:    promptMessages(systemPrompt, history, message),
		Temperature: r.orchCfg.Temperature,
		MaxTokens:   r.orchCfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("complete %s skill: %w", in, err)
	}

	env := chat.NewEnvelope(resp.Content, string(in), message)
	env.AddUsage(resp.TokensIn, resp.TokensOut)
	return env, nil
}
