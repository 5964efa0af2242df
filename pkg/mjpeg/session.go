package mjpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// SessionState represents the current state of an MJPEG session
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StateWaitingFirstFrame
	StatePlaying
	StateStopped
	StateError
)

// String returns the string representation of the session state
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateWaitingFirstFrame:
		return "WaitingFirstFrame"
	case StatePlaying:
		return "Playing"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (s SessionState) terminal() bool {
	return s == StateStopped || s == StateError
}

// Session owns one MJPEG connection: it drives the transport, feeds the
// demuxer in arrival order, applies the connect/first-frame/stall timeouts
// and broadcasts events through its hub. A session instance runs at most
// once; after Stopped or Error, create a new one.
type Session struct {
	sessionId string
	url       string
	headers   map[string]string
	cfg       StreamConfig
	transport Transport
	hub       *Hub

	mu      sync.Mutex
	state   SessionState
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	frames  atomic.Uint64
	bytes   atomic.Uint64
	dropped atomic.Uint64
}

// NewSession creates a session for the given stream URL. Optional request
// headers are sent verbatim (auth 등). The session does not connect until
// Start is called.
func NewSession(url string, headers map[string]string, cfg StreamConfig) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		url:       url,
		headers:   headers,
		cfg:       cfg,
		transport: NewHTTPTransport(cfg.ConnectTimeout),
		hub:       newHub(),
		state:     StateIdle,
		done:      make(chan struct{}),
	}
	// 포인터 주소값을 sessionId로 사용
	s.sessionId = fmt.Sprintf("%p", s)
	return s
}

// Events subscribes to the session's event stream. There is no replay;
// events published before the subscription are not delivered.
func (s *Session) Events(capacity int) <-chan Event {
	return s.hub.Subscribe(capacity)
}

// Unsubscribe detaches a subscription obtained from Events.
func (s *Session) Unsubscribe(ch <-chan Event) {
	s.hub.Unsubscribe(ch)
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the session goroutine has fully exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start begins connecting. Calling Start again on the same instance is a
// no-op, including after the session ended.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.state.terminal() {
		s.mu.Unlock()
		slog.Debug("session already started or ended", "sessionId", s.sessionId)
		return
	}
	s.started = true
	s.state = StateConnecting
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	slog.Info("session starting", "sessionId", s.sessionId, "url", s.url)
	go s.run(ctx)
}

// Stop aborts the session. Safe to call multiple times and from any
// goroutine; exactly one StreamEnded is published in total, and no frame,
// resolution or error events follow it.
func (s *Session) Stop() {
	s.finish(ReasonAborted)
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	contentType, body, err := s.transport.Open(ctx, s.url, s.headers)
	if err != nil {
		if ctx.Err() != nil {
			s.finish(ReasonAborted)
			return
		}
		s.fail(err)
		return
	}
	defer closeWithLog(body)

	dmx, err := newDemuxer(contentType, s.cfg.MaxFrameBytes)
	if err != nil {
		s.fail(err)
		return
	}

	s.transition(StateWaitingFirstFrame)
	s.emit(StreamStarted{Boundary: dmx.boundary, Ts: time.Now()})
	slog.Info("stream started", "sessionId", s.sessionId, "boundary", dmx.boundary)

	chunks := make(chan []byte, chunkQueueSize)
	readErrs := make(chan error, 1)
	go readChunks(ctx, body, chunks, readErrs)

	// 첫 프레임 전에는 firstFrameTimeout, 재생 중에는 stallTimeout이 적용된다
	wd := newWatchdog(s.cfg.FirstFrameTimeout)
	defer wd.stop()
	playing := false

	for {
		select {
		case <-ctx.Done():
			s.finish(ReasonAborted)
			return

		case <-wd.C():
			if playing {
				s.fail(fmt.Errorf("%w: no data within %v", ErrStall, s.cfg.StallTimeout))
			} else {
				s.fail(fmt.Errorf("%w: no frame within %v", ErrStall, s.cfg.FirstFrameTimeout))
			}
			return

		case err := <-readErrs:
			// 종료 처리 전에 이미 도착한 청크를 먼저 소진한다
			for drained := false; !drained; {
				select {
				case chunk := <-chunks:
					if s.consume(dmx, wd, &playing, chunk) {
						return
					}
				default:
					drained = true
				}
			}
			switch {
			case errors.Is(err, io.EOF):
				s.finish(ReasonEndOfStream)
			case ctx.Err() != nil:
				s.finish(ReasonAborted)
			default:
				s.fail(fmt.Errorf("%w: %v", ErrConnection, err))
			}
			return

		case chunk := <-chunks:
			if s.consume(dmx, wd, &playing, chunk) {
				return
			}
		}
	}
}

// consume feeds one chunk to the demuxer and publishes the resulting events.
// Returns true when the stream hit its terminal boundary.
func (s *Session) consume(dmx *demuxer, wd *watchdog, playing *bool, chunk []byte) bool {
	if *playing {
		wd.reset()
	}
	for _, ev := range dmx.push(chunk) {
		switch e := ev.(type) {
		case FrameBytes:
			if !*playing {
				*playing = true
				s.transition(StatePlaying)
				wd.rewind(s.cfg.StallTimeout)
				slog.Info("first frame received", "sessionId", s.sessionId, "bytes", len(e.Payload))
			}
			s.frames.Add(1)
			s.bytes.Add(uint64(len(e.Payload)))
			s.emit(e)
		case FrameResolution:
			slog.Info("stream resolution", "sessionId", s.sessionId, "width", e.Width, "height", e.Height)
			s.emit(e)
		case StreamError:
			s.dropped.Add(1)
			slog.Warn("frame dropped", "sessionId", s.sessionId, "err", e.Err)
			s.emit(e)
		case StreamEnded:
			s.finish(e.Reason)
			return true
		}
	}
	return false
}

// emit publishes a non-terminal event unless the session already ended.
func (s *Session) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return
	}
	s.hub.publish(ev)
}

func (s *Session) transition(state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return
	}
	s.state = state
}

// fail은 치명 에러로 세션을 종료한다. StreamError 후 StreamEnded를 발행하며
// 이미 종료된 세션에는 아무 효과가 없다.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	s.state = StateError
	now := time.Now()
	s.hub.publish(StreamError{Err: err, Ts: now})
	s.hub.publish(StreamEnded{Reason: ReasonError, Ts: now})
	s.hub.close()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	slog.Error("session failed", "sessionId", s.sessionId, "err", err)
	s.logStats()
}

// finish는 세션을 정상 종료한다. StreamEnded 하나만 발행한다.
func (s *Session) finish(reason string) {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	s.hub.publish(StreamEnded{Reason: reason, Ts: time.Now()})
	s.hub.close()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	slog.Info("session stopped", "sessionId", s.sessionId, "reason", reason)
	s.logStats()
}

func (s *Session) logStats() {
	slog.Info("session stats",
		"sessionId", s.sessionId,
		"frames", s.frames.Load(),
		"bytes", s.bytes.Load(),
		"dropped", s.dropped.Load())
}

// readChunks pumps transport bytes into the session loop in arrival order.
func readChunks(ctx context.Context, body io.Reader, chunks chan<- []byte, errs chan<- error) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}
	}
}

func closeWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Debug("error closing resource", "err", err)
	}
}
