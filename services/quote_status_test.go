package services

import (
	"errors"
	"testing"
)

func TestCanTransition_AllPairs(t *testing.T) {
	allowed := map[[2]QuoteStatus][]ActorRole{
		{StatusDraft, StatusSent}:        {RolePartner},
		{StatusSent, StatusAccepted}:     {RolePartner, RoleAdmin},
		{StatusSent, StatusRejected}:     {RolePartner, RoleAdmin},
		{StatusAccepted, StatusExecuted}: {RolePartner, RoleAdmin},
	}

	pairs, legal := 0, 0
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			pairs++
			roles := allowed[[2]QuoteStatus{from, to}]
			if len(roles) > 0 {
				legal++
			}
			if IsValidTransition(from, to) != (len(roles) > 0) {
				t.Errorf("IsValidTransition(%s, %s) = %v", from, to, !(len(roles) > 0))
			}
			for _, role := range []ActorRole{RolePartner, RoleAdmin} {
				want := false
				for _, r := range roles {
					if r == role {
						want = true
					}
				}
				if got := CanTransition(from, to, role); got != want {
					t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", from, to, role, got, want)
				}
			}
		}
	}

	if pairs != 36 {
		t.Fatalf("checked %d pairs, want 36", pairs)
	}
	// Four status edges plus deleting a draft.
	if CanDelete(StatusDraft, RoleAdmin) {
		legal++
	}
	if legal != 5 {
		t.Errorf("legal operations = %d, want 5", legal)
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name      string
		from, to  QuoteStatus
		role      ActorRole
		items     int
		wantErr   error
		wantInval bool
	}{
		{"partner sends draft", StatusDraft, StatusSent, RolePartner, 2, nil, false},
		{"admin cannot send", StatusDraft, StatusSent, RoleAdmin, 2, ErrForbiddenTransition, false},
		{"empty draft cannot be sent", StatusDraft, StatusSent, RolePartner, 0, ErrEmptyQuote, false},
		{"admin accepts", StatusSent, StatusAccepted, RoleAdmin, 1, nil, false},
		{"partner rejects", StatusSent, StatusRejected, RolePartner, 1, nil, false},
		{"execute accepted", StatusAccepted, StatusExecuted, RolePartner, 1, nil, false},
		{"skip to accepted", StatusDraft, StatusAccepted, RolePartner, 1, nil, true},
		{"reopen rejected", StatusRejected, StatusSent, RoleAdmin, 1, nil, true},
		{"executed is final", StatusExecuted, StatusDraft, RoleAdmin, 1, nil, true},
		{"expired blocks", StatusExpired, StatusAccepted, RolePartner, 1, nil, true},
		{"no self transition", StatusSent, StatusSent, RolePartner, 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.role, tt.items)
			if tt.wantInval {
				var inv *InvalidTransitionError
				if !errors.As(err, &inv) {
					t.Fatalf("expected *InvalidTransitionError, got %v", err)
				}
				if inv.From != tt.from || inv.To != tt.to {
					t.Errorf("error names %s->%s, want %s->%s", inv.From, inv.To, tt.from, tt.to)
				}
				return
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckDelete(t *testing.T) {
	for _, status := range AllStatuses {
		for _, role := range []ActorRole{RolePartner, RoleAdmin} {
			err := CheckDelete(status, role)
			want := status == StatusDraft && role == RoleAdmin
			if (err == nil) != want {
				t.Errorf("CheckDelete(%s, %s) = %v", status, role, err)
			}
			if CanDelete(status, role) != want {
				t.Errorf("CanDelete(%s, %s) != %v", status, role, want)
			}
		}
	}

	if err := CheckDelete(StatusDraft, RolePartner); !errors.Is(err, ErrDeleteNotAdmin) {
		t.Errorf("partner delete: got %v", err)
	}
	if err := CheckDelete(StatusSent, RoleAdmin); !errors.Is(err, ErrDeleteNotDraft) {
		t.Errorf("sent delete: got %v", err)
	}
}

func TestParseQuoteStatus(t *testing.T) {
	for _, s := range AllStatuses {
		got, ok := ParseQuoteStatus(string(s))
		if !ok || got != s {
			t.Errorf("ParseQuoteStatus(%q) = %q, %v", s, got, ok)
		}
	}
	if _, ok := ParseQuoteStatus("archived"); ok {
		t.Error("unknown status accepted")
	}
}
