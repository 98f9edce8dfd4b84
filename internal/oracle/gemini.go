package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"droneOpsBooking/models"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Options configures the Gemini oracle.
type Options struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	RatePerMinute int
	HistoryTurns  int
	// Cooldown is the retry hint reported when the model is rate limited.
	Cooldown time.Duration
}

// sendFunc performs one chat exchange. Swapped out in tests.
type sendFunc func(ctx context.Context, system string, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, error)

// Gemini talks to Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	send    sendFunc
	limiter *rate.Limiter
	opts    Options
	log     *zap.Logger
}

// New returns a Gemini oracle, or Disabled when no API key is set.
func New(ctx context.Context, opts Options, log *zap.Logger) (Oracle, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		if log != nil {
			log.Warn("GEMINI_API_KEY not set; assistant will answer with an unavailable notice")
		}
		return Disabled{}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g := newGemini(opts, log)
	g.client = client
	g.send = func(ctx context.Context, system string, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, error) {
		model := client.GenerativeModel(g.opts.Model)
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
		cs := model.StartChat()
		cs.History = history
		return cs.SendMessage(ctx, genai.Text(prompt))
	}
	return g, nil
}

func newGemini(opts Options, log *zap.Logger) *Gemini {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 6
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = time.Minute
	}
	limit := rate.Inf
	burst := 1
	if opts.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RatePerMinute))
		burst = opts.RatePerMinute
	}
	return &Gemini{limiter: rate.NewLimiter(limit, burst), opts: opts, log: log}
}

// Converse sends the utterance with the trimmed history and returns the
// concatenated text of the first candidate.
func (g *Gemini) Converse(ctx context.Context, req Request) (string, error) {
	if r := g.limiter.Reserve(); !r.OK() || r.Delay() > 0 {
		cooldown := g.opts.Cooldown
		if r.OK() {
			cooldown = r.Delay()
			r.Cancel()
		}
		return "", &UnavailableError{Kind: KindRateLimited, Cooldown: cooldown, Err: errors.New("local request budget exhausted")}
	}

	system, err := SystemPrompt(req.Catalog, req.Today)
	if err != nil {
		return "", &UnavailableError{Kind: KindFailure, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.send(ctx, system, toContents(models.LastTurns(req.History, g.opts.HistoryTurns)), req.Utterance)
	if err != nil {
		ue := Classify(err, g.opts.Cooldown)
		g.log.Warn("gemini request failed", zap.String("kind", string(ue.Kind)),
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", ue
	}
	text := responseText(resp)
	if text == "" {
		return "", &UnavailableError{Kind: KindFailure, Err: errors.New("empty model response")}
	}
	g.log.Debug("gemini reply", zap.Duration("elapsed", time.Since(start)), zap.Int("chars", len(text)))
	return text, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func toContents(turns []models.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role != models.RoleUser {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
