package costreview

import (
	"context"
	"errors"
	"testing"
	"time"
)

type queueCaller struct {
	responses []string
	errs      []error
	prompts   []string
}

func (q *queueCaller) GenerateJSON(_ context.Context, prompt string) (string, error) {
	q.prompts = append(q.prompts, prompt)
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(q.responses) == 0 {
		return "{}", nil
	}
	out := q.responses[0]
	q.responses = q.responses[1:]
	return out, nil
}

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here is the verdict:\n```json\n{\"can_proceed\":true,\"summary_message\":\"ok\"}\n```\nanything after"
	var v ValidationVerdict
	if err := ExtractJSON(StageValidate, raw, &v); err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if !v.CanProceed || v.SummaryMessage != "ok" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestExtractJSONBareFence(t *testing.T) {
	raw := "```\n{\"summary_message\":\"bare\"}\n```"
	var v ValidationVerdict
	if err := ExtractJSON(StageValidate, raw, &v); err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if v.SummaryMessage != "bare" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestExtractJSONRawText(t *testing.T) {
	var v ValidationVerdict
	if err := ExtractJSON(StageValidate, `  {"summary_message":"raw"}  `, &v); err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if v.SummaryMessage != "raw" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestExtractJSONMalformed(t *testing.T) {
	var v ValidationVerdict
	err := ExtractJSON(StageAnalyze, "I cannot answer that.", &v)
	var ire *InvalidResponseError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidResponseError, got %T: %v", err, err)
	}
	if ire.Raw != "I cannot answer that." {
		t.Fatalf("raw text not preserved: %q", ire.Raw)
	}
	if ire.Stage != StageAnalyze {
		t.Fatalf("stage = %q", ire.Stage)
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		t.Fatal("malformed response must not classify as timeout")
	}
}

func TestGatewayRetriesTimeoutsOnly(t *testing.T) {
	t.Run("timeout then success", func(t *testing.T) {
		q := &queueCaller{errs: []error{context.DeadlineExceeded, nil}, responses: []string{`{"ok":true}`}}
		gw := NewGateway(q, 2)
		raw, attempts, err := gw.Invoke(context.Background(), StageAnalyze, "p", time.Second)
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if attempts != 2 {
			t.Fatalf("attempts = %d, want 2", attempts)
		}
		if raw != `{"ok":true}` {
			t.Fatalf("raw = %q", raw)
		}
	})

	t.Run("timeout on every attempt", func(t *testing.T) {
		q := &queueCaller{errs: []error{context.DeadlineExceeded, context.DeadlineExceeded}}
		gw := NewGateway(q, 2)
		_, _, err := gw.Invoke(context.Background(), StageFinalize, "p", time.Second)
		var te *TimeoutError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
		}
		if te.Stage != StageFinalize {
			t.Fatalf("stage = %q", te.Stage)
		}
		if len(q.prompts) != 2 {
			t.Fatalf("expected 2 attempts, saw %d", len(q.prompts))
		}
	})

	t.Run("non-timeout error is not retried", func(t *testing.T) {
		q := &queueCaller{errs: []error{errors.New("401 unauthorized")}}
		gw := NewGateway(q, 3)
		_, attempts, err := gw.Invoke(context.Background(), StageValidate, "p", time.Second)
		if err == nil {
			t.Fatal("expected error")
		}
		if attempts != 1 || len(q.prompts) != 1 {
			t.Fatalf("backend error must not retry; attempts=%d calls=%d", attempts, len(q.prompts))
		}
		var te *TimeoutError
		if errors.As(err, &te) {
			t.Fatal("backend error must not classify as timeout")
		}
	})
}
