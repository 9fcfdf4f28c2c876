package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityLedger/internal/model"
)

func TestFileRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed_events.jsonl")
	content := `{"chain_id":1,"block_number":10,"log_index":2,"event_name":"Swap","decoded":{"amount0":"1"}}

not json
{"chain_id":1,"block_number":11,"log_index":0,"event_name":"Donate","decoded":{}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var got []model.TypedEventRecord
	src := &File{Path: path}
	err := src.Run(context.Background(), func(_ context.Context, record model.TypedEventRecord) error {
		got = append(got, record)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(10), got[0].BlockNumber)
	assert.Equal(t, "Donate", got[1].EventName)
	assert.JSONEq(t, `{"amount0":"1"}`, string(got[0].Decoded))
}

func TestFileRunStopsOnHandlerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed_events.jsonl")
	content := "{\"block_number\":1}\n{\"block_number\":2}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	boom := errors.New("store down")
	calls := 0
	err := (&File{Path: path}).Run(context.Background(), func(context.Context, model.TypedEventRecord) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestFileRunMissingFile(t *testing.T) {
	err := (&File{Path: filepath.Join(t.TempDir(), "missing.jsonl")}).Run(context.Background(), nil)
	assert.Error(t, err)
}

// fakeMsg implements the parts of jetstream.Msg the consumer touches.
type fakeMsg struct {
	jetstream.Msg
	data                []byte
	acked, naked, termd bool
}

func (m *fakeMsg) Data() []byte    { return m.data }
func (m *fakeMsg) Subject() string { return "ledger.events" }
func (m *fakeMsg) Ack() error      { m.acked = true; return nil }
func (m *fakeMsg) Nak() error      { m.naked = true; return nil }
func (m *fakeMsg) Term() error     { m.termd = true; return nil }

func TestJetStreamHandleMessage(t *testing.T) {
	s := NewJetStream(nil, JetStreamConfig{}, nil)
	ctx := context.Background()

	ok := &fakeMsg{data: []byte(`{"block_number":7,"event_name":"Swap"}`)}
	var seen model.TypedEventRecord
	require.NoError(t, s.handleMessage(ctx, ok, func(_ context.Context, r model.TypedEventRecord) error {
		seen = r
		return nil
	}))
	assert.True(t, ok.acked)
	assert.Equal(t, uint64(7), seen.BlockNumber)

	bad := &fakeMsg{data: []byte(`{`)}
	require.NoError(t, s.handleMessage(ctx, bad, func(context.Context, model.TypedEventRecord) error {
		t.Fatal("handler called for malformed payload")
		return nil
	}))
	assert.True(t, bad.termd)
	assert.False(t, bad.acked)

	failing := &fakeMsg{data: []byte(`{"block_number":8}`)}
	boom := errors.New("store down")
	err := s.handleMessage(ctx, failing, func(context.Context, model.TypedEventRecord) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, failing.naked)
	assert.False(t, failing.acked)
}
