package iris

import (
	"log/slog"
	"sync"

	"iris/pkg/mjpeg"
)

// Monitor는 설정된 카메라마다 MJPEG 세션 하나를 소유하고
// 이벤트 채널을 모아서 처리하는 애플리케이션 계층입니다.
// 재연결 정책은 여기(호출자) 몫이며 세션 자체는 재시도하지 않습니다.
type Monitor struct {
	config   *Config
	sessions map[string]*mjpeg.Session
	channel  chan cameraEvent
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// cameraEvent는 세션 이벤트에 카메라 이름을 붙인 것
type cameraEvent struct {
	camera string
	event  mjpeg.Event
}

func NewMonitor(config *Config) *Monitor {
	return &Monitor{
		config:   config,
		sessions: make(map[string]*mjpeg.Session),
		channel:  make(chan cameraEvent, 64),
		done:     make(chan struct{}),
	}
}

func (m *Monitor) Start() error {
	slog.Info("Start Monitor", "cameras", len(m.config.Cameras))

	streamCfg := m.config.ToStreamConfig()
	for _, cam := range m.config.Cameras {
		session := mjpeg.NewSession(cam.URL, cam.Headers, streamCfg)
		m.sessions[cam.Name] = session

		events := session.Events(32)
		m.wg.Add(1)
		go m.forward(cam.Name, events)

		session.Start()
	}

	// 이벤트 루프를 고루틴으로 시작
	go m.eventLoop()
	return nil
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		slog.Info("Stopping monitor...")

		// 1. 세션 종료 (허브가 닫히면 forwarder도 끝난다)
		for name, session := range m.sessions {
			session.Stop()
			slog.Info("Session stop requested", "camera", name)
		}

		// 2. forwarder 합류
		m.wg.Wait()

		// 3. 이벤트 루프 종료
		close(m.done)
		slog.Info("Monitor stopped successfully")
	})
}

// forward는 세션 이벤트에 카메라 이름을 붙여 공용 채널로 넘깁니다.
func (m *Monitor) forward(camera string, events <-chan mjpeg.Event) {
	defer m.wg.Done()
	for ev := range events {
		select {
		case m.channel <- cameraEvent{camera: camera, event: ev}:
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) eventLoop() {
	for {
		select {
		case ce := <-m.channel:
			m.channelHandler(ce)
		case <-m.done:
			slog.Info("Monitor event loop stopping...")
			return
		}
	}
}

func (m *Monitor) channelHandler(ce cameraEvent) {
	switch e := ce.event.(type) {
	case mjpeg.StreamStarted:
		slog.Info("stream started", "camera", ce.camera, "boundary", e.Boundary)
	case mjpeg.FrameBytes:
		slog.Debug("frame", "camera", ce.camera, "seq", e.Sequence, "bytes", len(e.Payload))
	case mjpeg.FrameResolution:
		slog.Info("stream resolution", "camera", ce.camera, "width", e.Width, "height", e.Height)
	case mjpeg.StreamError:
		slog.Warn("stream error", "camera", ce.camera, "err", e.Err)
	case mjpeg.StreamEnded:
		slog.Info("stream ended", "camera", ce.camera, "reason", e.Reason)
	default:
		slog.Warn("unknown event type", "camera", ce.camera)
	}
}
