package mjpeg

import (
	"bytes"
	"time"

	"iris/pkg/jpeg"
)

// demuxer는 multipart/x-mixed-replace 바이트 스트림을 프레임 이벤트로 분해한다.
// 청크 경계와 무관하게 동작한다. 버퍼와 커서는 세션 하나가 단독 소유하며
// 동시 접근은 허용되지 않는다.
type demuxer struct {
	marker   []byte // "--" + boundary 토큰
	boundary string
	buf      []byte
	cursor   int    // 이미 검사한 구간을 다시 스캔하지 않기 위한 탐색 시작점
	seq      uint64 // 다음 FrameBytes의 시퀀스 번호
	maxFrame int
	probed   bool // 해상도 추출은 세션당 1회
	done     bool // 종단 boundary 수신 후 영구 정지
}

// newDemuxer는 Content-Type 값을 검증하고 boundary 토큰을 추출한다.
func newDemuxer(contentType string, maxFrameBytes int) (*demuxer, error) {
	boundary, err := extractBoundary(contentType)
	if err != nil {
		return nil, err
	}
	return &demuxer{
		marker:   append([]byte("--"), boundary...),
		boundary: boundary,
		maxFrame: maxFrameBytes,
	}, nil
}

// push는 새 청크를 버퍼에 추가하고 추출 가능한 모든 이벤트를 순서대로 반환한다.
// 하나의 청크에서 여러 프레임이 나올 수 있다. 불완전한 데이터는 에러가 아니라
// 다음 청크를 기다린다.
func (d *demuxer) push(chunk []byte) []Event {
	if d.done {
		return nil
	}
	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		i := bytes.Index(d.buf[d.cursor:], d.marker)
		if i < 0 {
			// 마커가 청크 경계에 걸쳐 있을 수 있으므로 꼬리만 남기고 커서 전진
			d.cursor = max(0, len(d.buf)-len(d.marker))
			return events
		}
		markerPos := d.cursor + i

		p := markerPos + len(d.marker)
		if bytes.HasPrefix(d.buf[p:], crlf) {
			p += 2
		}

		// 종단 boundary("--token--") 판별에 2바이트 필요
		if len(d.buf)-p < 2 {
			d.cursor = markerPos
			return events
		}
		if d.buf[p] == '-' && d.buf[p+1] == '-' {
			d.done = true
			events = append(events, StreamEnded{Reason: ReasonTerminalBoundary, Ts: time.Now()})
			return events
		}

		// 파트 헤더 종결자
		hi := bytes.Index(d.buf[p:], crlfcrlf)
		if hi < 0 {
			d.cursor = markerPos
			return events
		}
		contentStart := p + hi + len(crlfcrlf)

		// 다음 마커가 프레임 끝을 확정한다
		j := bytes.Index(d.buf[contentStart:], d.marker)
		if j < 0 {
			d.cursor = markerPos
			return events
		}
		nextMarker := contentStart + j

		frameEnd := nextMarker - len(crlf)
		if frameEnd < contentStart {
			frameEnd = contentStart
		}

		events = append(events, d.extract(d.buf[contentStart:frameEnd])...)

		// 소비한 프리픽스 폐기 후 같은 버퍼에서 다음 프레임 탐색
		n := copy(d.buf, d.buf[nextMarker:])
		d.buf = d.buf[:n]
		d.cursor = 0
	}
}

// extract는 확정된 프레임 바디 하나를 이벤트로 변환한다.
// 크기 초과 프레임은 폐기되고 시퀀스 번호를 소비하지 않는다.
// 길이 0 프레임은 조용히 건너뛴다.
func (d *demuxer) extract(frame []byte) []Event {
	if len(frame) == 0 {
		return nil
	}
	if len(frame) > d.maxFrame {
		return []Event{StreamError{Err: ErrFrameTooLarge, Ts: time.Now()}}
	}

	payload := make([]byte, len(frame))
	copy(payload, frame)

	events := []Event{FrameBytes{Payload: payload, Sequence: d.seq, Ts: time.Now()}}
	d.seq++

	if !d.probed {
		d.probed = true
		if w, h, ok := jpeg.Dimensions(payload); ok {
			events = append(events, FrameResolution{Width: w, Height: h, Ts: time.Now()})
		}
	}
	return events
}
