package entry

import (
	"testing"
	"time"
)

func TestCanStart(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StartContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can start with text",
			ctx:         StartContext{NormalizedText: "drink water"},
			wantAllowed: true,
		},
		{
			name:        "cannot start with empty text",
			ctx:         StartContext{NormalizedText: ""},
			wantAllowed: false,
			wantReason:  "commitment text is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanStart(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanFinishAndClean(t *testing.T) {
	active := Entry{Text: "run", Created: time.Unix(0, 0), LastCleaned: time.Unix(0, 0)}

	if r := CanFinish(ActiveContext{Current: active}); !r.Allowed {
		t.Errorf("CanFinish(active) refused: %s", r.Reason)
	}
	if r := CanClean(ActiveContext{Current: active}); !r.Allowed {
		t.Errorf("CanClean(active) refused: %s", r.Reason)
	}

	r := CanFinish(ActiveContext{Current: Entry{Text: "   "}})
	if r.Allowed {
		t.Fatal("CanFinish(blank) should be refused")
	}
	if r.Error() == nil {
		t.Error("refused GuardResult should produce an error")
	}
	if CanClean(ActiveContext{}).Allowed {
		t.Error("CanClean(empty) should be refused")
	}
}
