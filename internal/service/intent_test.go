package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"hotelix/internal/model"
)

// stubCompleter returns a canned answer and counts calls
type stubCompleter struct {
	enabled bool
	content string
	err     error
	calls   int
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	return s.content, s.err
}

func (s *stubCompleter) Enabled() bool { return s.enabled }

func TestIntentParser_Diagnostics(t *testing.T) {
	tests := []struct {
		name      string
		completer *stubCompleter
		want      model.IntentRecord
		wantCalls int
	}{
		{
			name:      "missing credential makes no call",
			completer: &stubCompleter{enabled: false},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrNotConfigured},
			wantCalls: 0,
		},
		{
			name:      "unparseable output",
			completer: &stubCompleter{enabled: true, content: "Sorry, I can't help with that."},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrParse},
			wantCalls: 1,
		},
		{
			name:      "empty output",
			completer: &stubCompleter{enabled: true, content: ""},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrParse},
			wantCalls: 1,
		},
		{
			name:      "JSON null",
			completer: &stubCompleter{enabled: true, content: "null"},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrParse},
			wantCalls: 1,
		},
		{
			name:      "no choices",
			completer: &stubCompleter{enabled: true, err: ErrNoChoices},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrNoChoices},
			wantCalls: 1,
		},
		{
			name:      "deadline exceeded",
			completer: &stubCompleter{enabled: true, err: fmt.Errorf("chat completion failed: %w", context.DeadlineExceeded)},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrTimeout},
			wantCalls: 1,
		},
		{
			name:      "non-2xx response",
			completer: &stubCompleter{enabled: true, err: errors.New("status code: 500")},
			want:      model.IntentRecord{Intent: model.IntentHelp, Error: model.IntentErrAPI},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewIntentParser(tt.completer, zap.NewNop())
			got := parser.Extract(context.Background(), "hotel in Paris")

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
			if tt.completer.calls != tt.wantCalls {
				t.Errorf("completer called %d times, want %d", tt.completer.calls, tt.wantCalls)
			}
		})
	}
}

func TestIntentParser_NilCompleter(t *testing.T) {
	parser := NewIntentParser(nil, zap.NewNop())
	got := parser.Extract(context.Background(), "hello")
	if got.Intent != model.IntentHelp || got.Error != model.IntentErrNotConfigured {
		t.Errorf("Extract() = %+v, want help/not_configured", got)
	}
}

func TestIntentParser_FullRecord(t *testing.T) {
	content := "```json\n" + `{
		"intent": "search",
		"location": "Paris",
		"check_in": "2025-07-01",
		"check_out": "2025-07-05",
		"guests": 2,
		"budget_max": 150,
		"preferences": ["WiFi", "pool", "wi-fi"]
	}` + "\n```"
	parser := NewIntentParser(&stubCompleter{enabled: true, content: content}, zap.NewNop())

	got := parser.Extract(context.Background(), "Paris 1-5 July, 2 people, under 150, wifi and pool")

	if got.Intent != model.IntentSearch || got.Error != "" {
		t.Fatalf("Intent = %q (error %q), want search", got.Intent, got.Error)
	}
	if got.Location == nil || *got.Location != "Paris" {
		t.Errorf("Location = %v, want Paris", got.Location)
	}
	if got.CheckIn == nil || *got.CheckIn != "2025-07-01" || got.CheckOut == nil || *got.CheckOut != "2025-07-05" {
		t.Errorf("dates = %v/%v", got.CheckIn, got.CheckOut)
	}
	if got.Guests == nil || *got.Guests != 2 {
		t.Errorf("Guests = %v, want 2", got.Guests)
	}
	if got.BudgetMax == nil || *got.BudgetMax != 150 {
		t.Errorf("BudgetMax = %v, want 150", got.BudgetMax)
	}
	if !reflect.DeepEqual(got.Preferences, []string{"wifi", "pool"}) {
		t.Errorf("Preferences = %v, want [wifi pool]", got.Preferences)
	}
}

func TestIntentParser_Coercion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, got model.IntentRecord)
	}{
		{
			name:    "unknown intent falls back to help without diagnostic",
			content: `{"intent": "book_now"}`,
			check: func(t *testing.T, got model.IntentRecord) {
				if got.Intent != model.IntentHelp || got.Error != "" {
					t.Errorf("got %+v, want plain help", got)
				}
			},
		},
		{
			name:    "numbers as strings",
			content: `{"intent": "search", "guests": "3", "budget_max": "200.5"}`,
			check: func(t *testing.T, got model.IntentRecord) {
				if got.Guests == nil || *got.Guests != 3 {
					t.Errorf("Guests = %v, want 3", got.Guests)
				}
				if got.BudgetMax == nil || *got.BudgetMax != 200.5 {
					t.Errorf("BudgetMax = %v, want 200.5", got.BudgetMax)
				}
			},
		},
		{
			name:    "null strings and invalid values are dropped",
			content: `{"intent": "refine", "location": "null", "check_in": "next friday", "check_out": null, "guests": 0, "budget_max": -10, "preferences": []}`,
			check: func(t *testing.T, got model.IntentRecord) {
				want := model.IntentRecord{Intent: model.IntentRefine}
				if !reflect.DeepEqual(got, want) {
					t.Errorf("got %+v, want %+v", got, want)
				}
			},
		},
		{
			name:    "boolean guests are ignored",
			content: `{"intent": "search", "guests": true}`,
			check: func(t *testing.T, got model.IntentRecord) {
				if got.Guests != nil {
					t.Errorf("Guests = %v, want nil", *got.Guests)
				}
			},
		},
		{
			name:    "comma separated preferences",
			content: `{"intent": "refine", "preferences": "spa, Gym"}`,
			check: func(t *testing.T, got model.IntentRecord) {
				if !reflect.DeepEqual(got.Preferences, []string{"spa", "gym"}) {
					t.Errorf("Preferences = %v", got.Preferences)
				}
			},
		},
		{
			name:    "budget zero is kept",
			content: `{"intent": "search", "budget_max": 0}`,
			check: func(t *testing.T, got model.IntentRecord) {
				if got.BudgetMax == nil || *got.BudgetMax != 0 {
					t.Errorf("BudgetMax = %v, want 0", got.BudgetMax)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewIntentParser(&stubCompleter{enabled: true, content: tt.content}, zap.NewNop())
			tt.check(t, parser.Extract(context.Background(), "message"))
		})
	}
}
