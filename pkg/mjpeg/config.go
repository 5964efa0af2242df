package mjpeg

import "time"

// StreamConfig는 세션 동작 설정
type StreamConfig struct {
	ConnectTimeout    time.Duration // 연결 + 응답 헤더 수신 제한
	FirstFrameTimeout time.Duration // 헤더 수신 후 첫 프레임 제한
	StallTimeout      time.Duration // 재생 중 무수신 제한
	MaxFrameBytes     int           // 프레임당 최대 크기 (초과 시 해당 프레임만 폐기)
	TargetFPS         int           // 힌트 전용. 파서는 강제하지 않음
}

// DefaultStreamConfig는 기본값으로 채운 설정을 반환
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ConnectTimeout:    DefaultConnectTimeout,
		FirstFrameTimeout: DefaultFirstFrameTimeout,
		StallTimeout:      DefaultStallTimeout,
		MaxFrameBytes:     DefaultMaxFrameBytes,
	}
}

// withDefaults는 0 값 필드를 기본값으로 치환한 복사본을 반환
func (c StreamConfig) withDefaults() StreamConfig {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.FirstFrameTimeout <= 0 {
		c.FirstFrameTimeout = DefaultFirstFrameTimeout
	}
	if c.StallTimeout <= 0 {
		c.StallTimeout = DefaultStallTimeout
	}
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = DefaultMaxFrameBytes
	}
	return c
}
