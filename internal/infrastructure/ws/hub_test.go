package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (f *fakeClient) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestHub_Difusion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(nil)
	go h.Run(ctx)

	good := &fakeClient{}
	broken := &fakeClient{fail: true}
	h.Register(good)
	h.Register(broken)
	require.Equal(t, 2, h.Clients())

	h.Publish(sales.Event{Type: sales.EventSaleCompleted, SaleNumber: 3, At: time.Now()})

	require.Eventually(t, func() bool { return good.received() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	var got sales.Event
	require.NoError(t, json.Unmarshal(good.messages[0], &got))
	assert.Equal(t, sales.EventSaleCompleted, got.Type)
	assert.Equal(t, int64(3), got.SaleNumber)

	h.Unregister(good)
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, good.closed)
}

func TestHub_PublishNoBloquea(t *testing.T) {
	h := NewHub(nil) // sin Run: nadie consume

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			h.Publish(sales.Event{Type: sales.EventStockLow})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish bloqueó con la cola llena")
	}
}

func TestHub_CierraClientesAlTerminar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() { h.Run(ctx); close(stopped) }()

	c := &fakeClient{}
	h.Register(c)
	cancel()
	<-stopped
	assert.True(t, c.closed)
	assert.Equal(t, 0, h.Clients())
}

func (f *fakeClient) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestHub_AltasYBajasTrasTerminarNoBloquean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() { h.Run(ctx); close(stopped) }()

	c := &fakeClient{}
	h.Register(c)
	cancel()
	<-stopped

	late := &fakeClient{}
	done := make(chan struct{})
	go func() {
		h.Unregister(c)
		h.Register(late)
		h.Unregister(late)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister bloqueó con el hub detenido")
	}
	assert.True(t, c.isClosed())
	assert.True(t, late.isClosed(), "un cliente que llega tarde se cierra")
	assert.Equal(t, 0, h.Clients())
}
