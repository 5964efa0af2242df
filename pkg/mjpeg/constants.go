package mjpeg

import "time"

// 기본 타임아웃 및 크기 제한
const (
	DefaultConnectTimeout    = 5 * time.Second
	DefaultFirstFrameTimeout = 5 * time.Second
	DefaultStallTimeout      = 5 * time.Second
	DefaultMaxFrameBytes     = 2 * 1024 * 1024
)

// 전송 청크 읽기 버퍼 크기
const (
	readChunkSize  = 4096
	chunkQueueSize = 16
)

// StreamEnded 사유
const (
	ReasonTerminalBoundary = "terminal boundary"
	ReasonEndOfStream      = "end of stream"
	ReasonAborted          = "aborted by user"
	ReasonError            = "error"
)

// multipart 콘텐츠 타입
const (
	contentTypeMixedReplace = "multipart/x-mixed-replace"
	boundaryParam           = "boundary="
)

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
)
