package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"hotelix/internal/model"
	"hotelix/internal/utils"
)

const intentSystemPrompt = `You are a smart hotel recommendation assistant.
Analyse the user's message and extract the information as strict JSON.
Possible intents: search, refine, help, info
JSON response format:
{
  "intent": "search|refine|help|info",
  "location": "city or null",
  "check_in": "YYYY-MM-DD or null",
  "check_out": "YYYY-MM-DD or null",
  "guests": number or null,
  "budget_max": number or null,
  "preferences": ["wifi", "pool", ...] or []
}
Reply ONLY with valid JSON, nothing else.`

const isoDate = "2006-01-02"

// IntentParser turns a free-text message into an intent record using a language model
type IntentParser struct {
	completer Completer
	logger    *zap.Logger
}

// NewIntentParser creates a new intent parser
func NewIntentParser(completer Completer, logger *zap.Logger) *IntentParser {
	return &IntentParser{
		completer: completer,
		logger:    logger,
	}
}

// Extract reads the user's intent. It never fails: when the model cannot be used
// the record falls back to the help intent with a diagnostic in Error.
func (p *IntentParser) Extract(ctx context.Context, text string) model.IntentRecord {
	text = strings.TrimSpace(text)

	if p.completer == nil || !p.completer.Enabled() {
		p.logger.Warn("Completion service is not configured, set LLM_API_KEY or GROQ_API_KEY")
		return model.FallbackIntent(model.IntentErrNotConfigured)
	}

	raw, err := p.completer.Complete(ctx, intentSystemPrompt, text)
	if err != nil {
		reason := classifyCompletionError(ctx, err)
		p.logger.Error("Intent extraction failed", zap.String("reason", reason), zap.Error(err))
		return model.FallbackIntent(reason)
	}

	var fields map[string]interface{}
	if err := utils.ParseAIJSON(raw, &fields); err != nil || fields == nil {
		p.logger.Error("Could not parse model output as JSON",
			zap.String("raw", truncate(raw, 200)), zap.Error(err))
		return model.FallbackIntent(model.IntentErrParse)
	}

	record := recordFromFields(fields)
	p.logger.Debug("Intent extracted",
		zap.String("intent", string(record.Intent)),
		zap.Any("record", record))
	return record
}

func classifyCompletionError(ctx context.Context, err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, ErrNotConfigured):
		return model.IntentErrNotConfigured
	case errors.Is(err, ErrNoChoices):
		return model.IntentErrNoChoices
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.IntentErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return model.IntentErrTimeout
	default:
		return model.IntentErrAPI
	}
}

// recordFromFields coerces loosely typed model output into an intent record.
// Values that do not make sense are dropped rather than guessed.
func recordFromFields(fields map[string]interface{}) model.IntentRecord {
	intent := strings.ToLower(strings.TrimSpace(cast.ToString(fields["intent"])))
	record := model.IntentRecord{
		Intent:    model.ParseIntent(intent),
		Location:  optString(fields["location"]),
		CheckIn:   optDate(fields["check_in"]),
		CheckOut:  optDate(fields["check_out"]),
		Guests:    optPositiveInt(fields["guests"]),
		BudgetMax: optBudget(fields["budget_max"]),
	}

	if prefs := stringList(fields["preferences"]); len(prefs) > 0 {
		record.Preferences = utils.NormalizeAmenities(prefs)
	}

	return record
}

func optString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if isNullish(s) {
		return nil
	}
	return &s
}

func optDate(v interface{}) *string {
	s := optString(v)
	if s == nil {
		return nil
	}
	if _, err := time.Parse(isoDate, *s); err != nil {
		return nil
	}
	return s
}

func optPositiveInt(v interface{}) *int {
	switch v.(type) {
	case float64, string, int:
	default:
		return nil
	}
	n, err := cast.ToIntE(v)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func optBudget(v interface{}) *float64 {
	switch v.(type) {
	case float64, string, int:
	default:
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

func stringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && !isNullish(s) {
				out = append(out, s)
			}
		}
		return out
	case string:
		if isNullish(val) {
			return nil
		}
		return strings.Split(val, ",")
	default:
		return nil
	}
}

func isNullish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none":
		return true
	}
	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
