package mjpeg

import "errors"

// 에러 분류. 세션은 모든 실패를 이 다섯 가지 중 하나로 감싸서 StreamError로 전달한다.
// ErrFrameTooLarge만 비치명적이고 나머지는 세션을 종료시킨다.
var (
	ErrConnection    = errors.New("mjpeg: connection error")
	ErrProtocol      = errors.New("mjpeg: protocol error")
	ErrFrameTooLarge = errors.New("mjpeg: frame too large")
	ErrStall         = errors.New("mjpeg: stream stalled")
	ErrAborted       = errors.New("mjpeg: aborted by user")
)
