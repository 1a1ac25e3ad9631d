package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// publishCall records one Transport.Publish invocation.
type publishCall struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

// subscribeCall records one Transport.Subscribe invocation.
type subscribeCall struct {
	topic string
	qos   byte
}

// stubTransport is a recording Transport for tests.
type stubTransport struct {
	mu sync.Mutex

	events  TransportEvents
	created bool

	// connectFn decides the outcome of the n-th connect (1-based). nil succeeds.
	connectFn    func(n int) error
	publishErr   error
	subscribeErr error

	connects    int
	connectOpts []ConnectOptions
	publishes   []publishCall
	subscribes  []subscribeCall
	disconnects int
	destroyed   bool

	// inFlight detects overlapping transport calls.
	inFlight   int
	overlapped bool
}

func newStubTransport() *stubTransport {
	return &stubTransport{}
}

func (s *stubTransport) factory(_, _ string, events TransportEvents) (Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.created = true
	return s, nil
}

func (s *stubTransport) enter() {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > 1 {
		s.overlapped = true
	}
	s.mu.Unlock()
}

func (s *stubTransport) leave() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *stubTransport) Connect(opts ConnectOptions) error {
	s.enter()
	defer s.leave()

	s.mu.Lock()
	s.connects++
	n := s.connects
	s.connectOpts = append(s.connectOpts, opts)
	fn := s.connectFn
	s.mu.Unlock()

	if fn != nil {
		return fn(n)
	}
	return nil
}

func (s *stubTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	s.enter()
	defer s.leave()

	// Widen the window for overlap detection.
	time.Sleep(50 * time.Microsecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishes = append(s.publishes, publishCall{
		topic:    topic,
		payload:  string(payload),
		qos:      qos,
		retained: retained,
	})
	return s.publishErr
}

func (s *stubTransport) Subscribe(topic string, qos byte) error {
	s.enter()
	defer s.leave()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribes = append(s.subscribes, subscribeCall{topic: topic, qos: qos})
	return s.subscribeErr
}

func (s *stubTransport) Disconnect(time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects++
}

func (s *stubTransport) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func (s *stubTransport) connectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}

func (s *stubTransport) publishCalls() []publishCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]publishCall(nil), s.publishes...)
}

func (s *stubTransport) subscribeCalls() []subscribeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]subscribeCall(nil), s.subscribes...)
}

func (s *stubTransport) lastConnectOptions() ConnectOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.connectOpts) == 0 {
		return ConnectOptions{}
	}
	return s.connectOpts[len(s.connectOpts)-1]
}

// alwaysFail makes every connect attempt fail.
func alwaysFail(int) error {
	return errors.New("connection refused")
}

// statusRecorder collects connection status callbacks.
type statusRecorder struct {
	mu      sync.Mutex
	updates []bool
	ch      chan bool
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{ch: make(chan bool, 16)}
}

func (r *statusRecorder) handle(connected bool) {
	r.mu.Lock()
	r.updates = append(r.updates, connected)
	r.mu.Unlock()
	r.ch <- connected
}

func (r *statusRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.updates...)
}

// wait blocks until the next status update equals want.
func (r *statusRecorder) wait(t *testing.T, want bool) {
	t.Helper()
	select {
	case got := <-r.ch:
		if got != want {
			t.Fatalf("status callback = %v, want %v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for status callback %v", want)
	}
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}
