package queue

import (
	"bytes"
	"errors"
	"testing"
)

func newTestCodec() *JSONCodec {
	registry := NewRegistry()
	registry.Register("test", func() Job { return &testJob{} })
	return NewJSONCodec(registry)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := newTestCodec()
	msg := &Message{ID: "m-1", Job: &testJob{Name: "report", Tries: 3}, HandleTimes: 2}

	data, err := codec.Encode(msg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.ID != "m-1" || got.HandleTimes != 2 {
		t.Errorf("Decode() = {ID:%s HandleTimes:%d}, want {ID:m-1 HandleTimes:2}", got.ID, got.HandleTimes)
	}
	job, ok := got.Job.(*testJob)
	if !ok {
		t.Fatalf("Job type = %T, want *testJob", got.Job)
	}
	if job.Name != "report" || job.Tries != 3 {
		t.Errorf("Job = %+v", job)
	}
}

func TestJSONCodecEncodingIsStable(t *testing.T) {
	codec := newTestCodec()
	msg := &Message{ID: "m-1", Job: &testJob{Name: "report"}}

	first, _ := codec.Encode(msg)
	second, _ := codec.Encode(msg)
	if !bytes.Equal(first, second) {
		t.Errorf("Encode() not stable:\n%s\n%s", first, second)
	}
}

func TestJSONCodecDecodeErrors(t *testing.T) {
	codec := newTestCodec()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"unknown type", `{"type":"mystery","payload":{},"handle_times":0}`, ErrUnknownJobType},
		{"invalid json", `not json`, nil},
		{"bad payload", `{"type":"test","payload":{"tries":"many"}}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("Decode() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSONCodecStripID(t *testing.T) {
	codec := newTestCodec()
	job := &testJob{Name: "report"}

	a, _ := codec.Encode(NewMessage(job))
	b, _ := codec.Encode(NewMessage(job))
	if bytes.Equal(a, b) {
		t.Fatal("messages with distinct IDs encoded identically")
	}

	strippedA, err := codec.StripID(a)
	if err != nil {
		t.Fatalf("StripID() error = %v", err)
	}
	strippedB, _ := codec.StripID(b)
	if !bytes.Equal(strippedA, strippedB) {
		t.Errorf("StripID() differs:\n%s\n%s", strippedA, strippedB)
	}

	retried, _ := codec.Encode(&Message{ID: "x", Job: job, HandleTimes: 2})
	strippedRetried, _ := codec.StripID(retried)
	if bytes.Equal(strippedA, strippedRetried) {
		t.Error("StripID() ignored the handle count")
	}
}

func TestRegistryTypes(t *testing.T) {
	registry := NewRegistry()
	registry.Register("b", func() Job { return &testJob{} })
	registry.Register("a", func() Job { return &testJob{} })

	got := registry.Types()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Types() = %v, want [a b]", got)
	}

	job, err := registry.New("a")
	if err != nil || job == nil {
		t.Errorf("New(a) = %v, %v", job, err)
	}
}
