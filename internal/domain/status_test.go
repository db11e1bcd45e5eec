package domain

import "testing"

func TestCanTransition_PendingHasExactlyFiveSuccessors(t *testing.T) {
	want := map[OfferStatus]bool{
		StatusAccepted:  true,
		StatusRejected:  true,
		StatusWithdrawn: true,
		StatusCountered: true,
		StatusExpired:   true,
	}
	for _, to := range AllStatuses {
		got := CanTransition(StatusPending, to)
		if got != want[to] {
			t.Fatalf("CanTransition(pending, %s) = %v, want %v", to, got, want[to])
		}
	}
}

func TestCanTransition_TerminalStatusesHaveNoSuccessors(t *testing.T) {
	for _, from := range AllStatuses {
		if from == StatusPending {
			continue
		}
		for _, to := range AllStatuses {
			if CanTransition(from, to) {
				t.Fatalf("unexpected transition allowed: %s -> %s", from, to)
			}
		}
	}
}

func TestCanTransition_NoSelfOrUnknownTransitions(t *testing.T) {
	if CanTransition(StatusPending, StatusPending) {
		t.Fatal("pending -> pending must not be allowed")
	}
	if CanTransition("bogus", StatusAccepted) || CanTransition(StatusPending, "bogus") {
		t.Fatal("unknown statuses must never transition")
	}
}

func TestOfferStatus_ValidAndTerminal(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if OfferStatus("paid").Valid() {
		t.Fatal("'paid' is not an enumerated status")
	}
	if StatusPending.IsTerminal() {
		t.Fatal("pending is not terminal")
	}
	for _, s := range AllStatuses[1:] {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}

func TestRespondAction_TargetStatus(t *testing.T) {
	cases := []struct {
		action RespondAction
		want   OfferStatus
	}{
		{ActionAccept, StatusAccepted},
		{ActionReject, StatusRejected},
		{ActionWithdraw, StatusWithdrawn},
	}
	for _, tc := range cases {
		got, ok := tc.action.TargetStatus()
		if !ok || got != tc.want {
			t.Fatalf("TargetStatus(%s) = (%s,%v), want (%s,true)", tc.action, got, ok, tc.want)
		}
	}
	if _, ok := RespondAction("counter").TargetStatus(); ok {
		t.Fatal("counter is not a respond action")
	}
}

func TestRespondAction_HistoryAction(t *testing.T) {
	if ActionAccept.HistoryAction() != ActionAccepted {
		t.Fatal("accept should log as accepted")
	}
	if ActionReject.HistoryAction() != ActionRejected {
		t.Fatal("reject should log as rejected")
	}
	if ActionWithdraw.HistoryAction() != ActionWithdrawn {
		t.Fatal("withdraw should log as withdrawn")
	}
}
