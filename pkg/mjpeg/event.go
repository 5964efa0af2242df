package mjpeg

import "time"

// Event는 세션 이벤트 채널로 전달되는 값 (아래 구조체 중 하나)
type Event any

// 스트림 시작 이벤트 (헤더 수신 및 boundary 추출 완료)
type StreamStarted struct {
	Boundary string
	Ts       time.Time
}

// 프레임 수신 이벤트
type FrameBytes struct {
	Payload  []byte
	Sequence uint64
	Ts       time.Time
}

// 해상도 이벤트 (세션당 최대 1회, 첫 프레임에서 추출)
type FrameResolution struct {
	Width  int
	Height int
	Ts     time.Time
}

// 에러 이벤트
type StreamError struct {
	Err error
	Ts  time.Time
}

// 스트림 종료 이벤트 (세션당 정확히 1회, 항상 마지막)
type StreamEnded struct {
	Reason string
	Ts     time.Time
}
