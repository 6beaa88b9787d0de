package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/pkg/llm"
)

const (
	FallbackReply = "Sorry, I'm having trouble connecting right now. Please try again!"
	EmptyReply    = "Sorry, I could not process that request."
)

var (
	ErrEmptyUtterance    = errors.New("persona: empty utterance")
	ErrMissingCredential = errors.New("persona: no completion provider for persona")
)

// LiveInfo optionally enriches a turn with fresh information.
type LiveInfo interface {
	NeedsLiveInfo(query string) bool
	Lookup(ctx context.Context, query, background string) string
}

// Sink receives every transcript entry as soon as it exists. Errors are
// logged and never abort the turn.
type Sink interface {
	Emit(ctx context.Context, entry Entry) error
}

type SinkFunc func(ctx context.Context, entry Entry) error

func (f SinkFunc) Emit(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

type TurnRequest struct {
	History  []Entry
	UserText string
	Model    string
	Pair     Pair
	Sink     Sink
}

// TurnResult holds the entries appended by this turn, in order.
type TurnResult struct {
	Entries  []Entry
	LiveInfo bool
}

type Orchestrator struct {
	providers   map[string]llm.LLMProvider
	liveInfo    LiveInfo
	pacer       Pacer
	window      int
	temperature float64
	maxTokens   int
	now         func() time.Time
	logger      logger.ILogger
}

type Option func(*Orchestrator)

func WithLiveInfo(l LiveInfo) Option {
	return func(o *Orchestrator) { o.liveInfo = l }
}

func WithPacer(p Pacer) Option {
	return func(o *Orchestrator) { o.pacer = p }
}

func WithContextWindow(n int) Option {
	return func(o *Orchestrator) { o.window = n }
}

func WithSampling(temperature float64, maxTokens int) Option {
	return func(o *Orchestrator) {
		o.temperature = temperature
		o.maxTokens = maxTokens
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(l logger.ILogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator takes one provider per persona sender so each persona
// uses its own upstream credential.
func NewOrchestrator(providers map[string]llm.LLMProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers:   providers,
		pacer:       FixedInterval(1500 * time.Millisecond),
		window:      5,
		temperature: 0.7,
		maxTokens:   500,
		now:         time.Now,
		logger:      logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SendTurn appends the user utterance and both persona replies. An upstream
// failure on either persona becomes FallbackReply and the turn goes on. Any
// other failure aborts the turn; entries emitted so far are returned with
// the error.
func (o *Orchestrator) SendTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	text := strings.TrimSpace(req.UserText)
	if text == "" {
		return nil, ErrEmptyUtterance
	}

	pair := req.Pair
	first, ok := o.providers[pair.First.Sender]
	if !ok || first == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, pair.First.Sender)
	}
	second, ok := o.providers[pair.Second.Sender]
	if !ok || second == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, pair.Second.Sender)
	}

	result := &TurnResult{}
	o.record(ctx, req.Sink, result, SenderUser, text)

	window := BuildContext(req.History, text, pair, o.window)

	var live string
	if o.liveInfo != nil && o.liveInfo.NeedsLiveInfo(text) {
		live = o.liveInfo.Lookup(ctx, text, window)
		result.LiveInfo = true
	}

	reply, err := o.ask(ctx, first, pair.First, live, pair.First.Directive(window), req.Model)
	if err != nil {
		return result, err
	}
	o.record(ctx, req.Sink, result, pair.First.Sender, reply)

	if err := o.pacer.Wait(ctx); err != nil {
		return result, fmt.Errorf("pacing interrupted: %w", err)
	}

	window = extendContext(window, pair.First, reply)
	reply, err = o.ask(ctx, second, pair.Second, live, pair.Second.Directive(window), req.Model)
	if err != nil {
		return result, err
	}
	o.record(ctx, req.Sink, result, pair.Second.Sender, reply)

	return result, nil
}

// ask is the shared request helper. It only returns an error for failures
// that are not the endpoint's fault.
func (o *Orchestrator) ask(ctx context.Context, provider llm.LLMProvider, p Persona, live, prompt, model string) (string, error) {
	system := p.Preamble
	if live != "" {
		system = "Live information:\n" + live + "\n\n" + system
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: prompt},
	}

	started := o.now()
	reply, err := provider.Chat(ctx, messages,
		llm.WithModel(model),
		llm.WithTemperature(o.temperature),
		llm.WithMaxTokens(o.maxTokens),
	)

	details := map[string]interface{}{
		"persona":     p.Sender,
		"model":       model,
		"duration_ms": o.now().Sub(started).Milliseconds(),
	}

	switch {
	case err == nil:
		o.logger.Debug("PERSONA", "Persona replied", details)
		return reply, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, llm.ErrEmptyResponse):
		o.logger.Warn("PERSONA", "Persona returned empty reply", details)
		return EmptyReply, nil
	case errors.Is(err, llm.ErrUpstream):
		details["error"] = err.Error()
		o.logger.Warn("PERSONA", "Persona upstream failure, using fallback", details)
		return FallbackReply, nil
	default:
		details["error"] = err.Error()
		o.logger.Error("PERSONA", "Persona request could not be issued", details)
		return "", fmt.Errorf("%s request: %w", p.Sender, err)
	}
}

func (o *Orchestrator) record(ctx context.Context, sink Sink, result *TurnResult, sender, content string) {
	entry := Entry{Sender: sender, Content: content, Timestamp: o.now()}
	result.Entries = append(result.Entries, entry)

	if sink == nil {
		return
	}
	if err := sink.Emit(ctx, entry); err != nil {
		o.logger.Error("PERSONA", "Failed to emit transcript entry", map[string]interface{}{
			"sender": sender,
			"error":  err.Error(),
		})
	}
}
