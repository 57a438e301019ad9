package hub

import "testing"

func TestBroadcastFiltersBySubscription(t *testing.T) {
	h := New()
	clinicA := &Client{ID: "a", Send: make(chan []byte, 1), Subscription: Subscription{ClinicID: "clinic-a"}}
	clinicB := &Client{ID: "b", Send: make(chan []byte, 1), Subscription: Subscription{ClinicID: "clinic-b"}}
	doctorOnly := &Client{ID: "c", Send: make(chan []byte, 1), Subscription: Subscription{ClinicID: "clinic-a", DoctorID: "doc-1"}}
	h.Register(clinicA)
	h.Register(clinicB)
	h.Register(doctorOnly)

	h.Broadcast([]byte("event"), Subscription{ClinicID: "clinic-a", DoctorID: "doc-2"})

	if len(clinicA.Send) != 1 {
		t.Fatalf("clinic-a display should receive the event")
	}
	if len(clinicB.Send) != 0 {
		t.Fatalf("clinic-b display should not receive the event")
	}
	if len(doctorOnly.Send) != 0 {
		t.Fatalf("doctor-scoped display should not receive other doctors' events")
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	h := New()
	slow := &Client{ID: "slow", Send: make(chan []byte, 1)}
	h.Register(slow)

	h.Broadcast([]byte("one"), Subscription{ClinicID: "clinic-a"})
	h.Broadcast([]byte("two"), Subscription{ClinicID: "clinic-a"})

	if len(slow.Send) != 1 {
		t.Fatalf("expected exactly one buffered message, got %d", len(slow.Send))
	}
}

func TestParseSubscribe(t *testing.T) {
	msg, ok := ParseSubscribe([]byte(`{"action":"subscribe","clinic_id":"clinic-a","doctor_id":"doc-1"}`))
	if !ok || msg.ClinicID != "clinic-a" || msg.DoctorID != "doc-1" {
		t.Fatalf("unexpected parse result: %+v ok=%v", msg, ok)
	}

	if _, ok := ParseSubscribe([]byte(`{"action":"shout"}`)); ok {
		t.Fatalf("unknown action should not parse")
	}
	if _, ok := ParseSubscribe([]byte(`not json`)); ok {
		t.Fatalf("malformed payload should not parse")
	}
}
