package rfq

import "testing"

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusOpen, StatusClosed, true},
		{StatusOpen, StatusFulfilled, true},
		{StatusOpen, StatusOpen, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusFulfilled, false},
		{StatusFulfilled, StatusOpen, false},
		{StatusFulfilled, StatusClosed, false},
	}
	for _, tt := range tests {
		r := &RFQ{Status: tt.from}
		if got := r.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusAndUrgencyValid(t *testing.T) {
	if Status("reopened").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
	if !UrgencyEmergency.Valid() || Urgency("asap").Valid() {
		t.Fatalf("urgency validation mismatch")
	}
}
