package events

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(e Event) { got = append(got, "first:"+e.Type()) })
	b.Subscribe(func(e Event) { got = append(got, "second:"+e.Type()) })

	b.Publish(SearchStarted{Base: Base{Ts: time.Now(), SID: "s1"}, Seq: 1, Intent: "address", Query: "1 main st"})

	if len(got) != 2 || got[0] != "first:search.started" || got[1] != "second:search.started" {
		t.Fatalf("unexpected delivery: %v", got)
	}
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var b *Bus
	b.Publish(SelectionCleared{Base: Base{Ts: time.Now(), SID: "s1"}}) // must not panic
}

func TestEventAccessors(t *testing.T) {
	ts := time.Now()
	e := SearchFailed{Base: Base{Ts: ts, SID: "abc"}, Seq: 2, Source: "geocoder", Code: "TooManyRequests", HTTPStatus: 429}
	if e.SessionID() != "abc" || !e.Timestamp().Equal(ts) {
		t.Fatalf("accessor mismatch: %+v", e)
	}
	data, err := e.MarshalData()
	if err != nil || len(data) == 0 {
		t.Fatalf("MarshalData: %v", err)
	}
}
