package mjpeg

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

const testContentType = `multipart/x-mixed-replace; boundary=frame`

// multipartStream builds a well formed multipart body for the given frames.
// A bare opening marker is appended so the last frame is delimited, the way
// a live stream keeps going after each part.
func multipartStream(boundary string, frames ...[]byte) []byte {
	var b bytes.Buffer
	for _, f := range frames {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: image/jpeg\r\n")
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(f))
		b.WriteString("\r\n")
		b.Write(f)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "\r\n")
	return b.Bytes()
}

func framePayloads(events []Event) [][]byte {
	var out [][]byte
	for _, ev := range events {
		if f, ok := ev.(FrameBytes); ok {
			out = append(out, f.Payload)
		}
	}
	return out
}

func pushAll(t *testing.T, d *demuxer, stream []byte, chunkSize int) []Event {
	t.Helper()
	var events []Event
	for start := 0; start < len(stream); start += chunkSize {
		end := start + chunkSize
		if end > len(stream) {
			end = len(stream)
		}
		events = append(events, d.push(stream[start:end])...)
	}
	return events
}

func TestExtractBoundary(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{`multipart/x-mixed-replace; boundary="frame"`, "frame"},
		{`multipart/x-mixed-replace; boundary=--frame;charset=x`, "frame"},
		{`multipart/x-mixed-replace;boundary=myboundary`, "myboundary"},
		{`multipart/x-mixed-replace; BOUNDARY=frame`, "frame"},
		{`Multipart/X-Mixed-Replace; boundary= frame `, "frame"},
	}
	for _, c := range cases {
		got, err := extractBoundary(c.contentType)
		if err != nil {
			t.Errorf("extractBoundary(%q) failed: %v", c.contentType, err)
			continue
		}
		if got != c.want {
			t.Errorf("extractBoundary(%q) = %q, want %q", c.contentType, got, c.want)
		}
	}
}

func TestExtractBoundaryErrors(t *testing.T) {
	cases := []string{
		`multipart/x-mixed-replace`,
		`multipart/x-mixed-replace; boundary=`,
		`text/html; boundary=frame`,
		`image/jpeg`,
	}
	for _, ct := range cases {
		if _, err := extractBoundary(ct); !errors.Is(err, ErrProtocol) {
			t.Errorf("extractBoundary(%q): expected protocol error, got %v", ct, err)
		}
	}
}

func TestDemuxerSingleFrame(t *testing.T) {
	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}

	payload := []byte("jpegdata")
	events := d.push(multipartStream("frame", payload))

	frames := framePayloads(events)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], payload) {
		t.Errorf("payload mismatch: %q", frames[0])
	}
}

func TestDemuxerChunkingInvariance(t *testing.T) {
	f1 := bytes.Repeat([]byte{0xAB}, 100)
	f2 := bytes.Repeat([]byte{0xCD}, 333)
	f3 := []byte("short")
	stream := multipartStream("frame", f1, f2, f3)

	whole, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	want := framePayloads(whole.push(stream))
	if len(want) != 3 {
		t.Fatalf("expected 3 frames from unchunked parse, got %d", len(want))
	}

	for _, chunkSize := range []int{1, 2, 3, 7, 64, 4096} {
		d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
		if err != nil {
			t.Fatal(err)
		}
		got := framePayloads(pushAll(t, d, stream, chunkSize))
		if len(got) != len(want) {
			t.Fatalf("chunkSize %d: expected %d frames, got %d", chunkSize, len(want), len(got))
		}
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Errorf("chunkSize %d: frame %d mismatch", chunkSize, i)
			}
		}
	}
}

func TestDemuxerMonotonicSequence(t *testing.T) {
	frames := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc"), []byte("dddd")}
	stream := multipartStream("frame", frames...)

	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}

	var next uint64
	for _, ev := range pushAll(t, d, stream, 5) {
		f, ok := ev.(FrameBytes)
		if !ok {
			continue
		}
		if f.Sequence != next {
			t.Fatalf("expected sequence %d, got %d", next, f.Sequence)
		}
		next++
	}
	if next != uint64(len(frames)) {
		t.Errorf("expected %d frames, got %d", len(frames), next)
	}
}

func TestDemuxerOversizedFrame(t *testing.T) {
	const maxFrame = 2_000_000
	f1 := bytes.Repeat([]byte{1}, 100)
	f2 := bytes.Repeat([]byte{2}, maxFrame+1)
	f3 := bytes.Repeat([]byte{3}, 50)
	stream := multipartStream("frame", f1, f2, f3)

	d, err := newDemuxer(testContentType, maxFrame)
	if err != nil {
		t.Fatal(err)
	}
	events := d.push(stream)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	first, ok := events[0].(FrameBytes)
	if !ok || first.Sequence != 0 || len(first.Payload) != 100 {
		t.Errorf("unexpected first event: %#v", events[0])
	}

	serr, ok := events[1].(StreamError)
	if !ok || !errors.Is(serr.Err, ErrFrameTooLarge) {
		t.Errorf("expected FrameTooLarge error, got %#v", events[1])
	}

	// 폐기된 프레임은 시퀀스 번호를 소비하지 않는다
	second, ok := events[2].(FrameBytes)
	if !ok || second.Sequence != 1 || len(second.Payload) != 50 {
		t.Errorf("unexpected third event: %#v", events[2])
	}
}

func TestDemuxerTerminalBoundary(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("--frame\r\nContent-Type: image/jpeg\r\n\r\ndata\r\n")
	b.WriteString("--frame--\r\n")

	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	events := d.push(b.Bytes())

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	ended, ok := events[1].(StreamEnded)
	if !ok || ended.Reason != ReasonTerminalBoundary {
		t.Fatalf("expected terminal StreamEnded, got %#v", events[1])
	}

	// 종단 이후에는 영구 정지
	if more := d.push([]byte("--frame\r\n\r\nmore\r\n--frame\r\n")); more != nil {
		t.Errorf("expected no events after terminal boundary, got %d", len(more))
	}
}

func TestDemuxerZeroLengthFrameSkipped(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("--frame\r\nContent-Type: image/jpeg\r\n\r\n\r\n")
	b.WriteString("--frame\r\nContent-Type: image/jpeg\r\n\r\nreal\r\n")
	b.WriteString("--frame\r\n")

	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	events := d.push(b.Bytes())

	frames := framePayloads(events)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if string(frames[0]) != "real" {
		t.Errorf("unexpected payload %q", frames[0])
	}
	if events[0].(FrameBytes).Sequence != 0 {
		t.Errorf("zero-length frame must not consume a sequence index")
	}
}

func TestDemuxerPartialData(t *testing.T) {
	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}

	// 파트 헤더가 청크 경계에 걸린 경우
	if events := d.push([]byte("--frame\r\nContent-Ty")); len(events) != 0 {
		t.Fatalf("expected no events for partial headers, got %d", len(events))
	}
	if events := d.push([]byte("pe: image/jpeg\r\n\r\npayload")); len(events) != 0 {
		t.Fatalf("expected no events for partial body, got %d", len(events))
	}

	events := d.push([]byte("\r\n--frame\r\n"))
	frames := framePayloads(events)
	if len(frames) != 1 || string(frames[0]) != "payload" {
		t.Fatalf("expected delimited frame, got %#v", events)
	}
}

func TestDemuxerMultipleFramesInOneChunk(t *testing.T) {
	frames := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	stream := multipartStream("frame", frames...)

	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	got := framePayloads(d.push(stream))
	if len(got) != 3 {
		t.Fatalf("expected 3 frames from one chunk, got %d", len(got))
	}
}

func TestDemuxerQuotedBoundaryHeader(t *testing.T) {
	d, err := newDemuxer(`multipart/x-mixed-replace; boundary="frame"`, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	got := framePayloads(d.push(multipartStream("frame", []byte("x"))))
	if len(got) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(got))
	}
}

func TestDemuxerResolutionOnce(t *testing.T) {
	jpeg1 := testJPEG(320, 240)
	jpeg2 := testJPEG(640, 480)
	stream := multipartStream("frame", jpeg1, jpeg2)

	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	events := d.push(stream)

	var resolutions []FrameResolution
	for _, ev := range events {
		if r, ok := ev.(FrameResolution); ok {
			resolutions = append(resolutions, r)
		}
	}
	if len(resolutions) != 1 {
		t.Fatalf("expected exactly 1 resolution event, got %d", len(resolutions))
	}
	if resolutions[0].Width != 320 || resolutions[0].Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", resolutions[0].Width, resolutions[0].Height)
	}

	// 해상도 이벤트는 첫 FrameBytes 직후에 와야 한다
	if _, ok := events[0].(FrameBytes); !ok {
		t.Errorf("expected FrameBytes first, got %#v", events[0])
	}
	if _, ok := events[1].(FrameResolution); !ok {
		t.Errorf("expected FrameResolution second, got %#v", events[1])
	}
}

func TestDemuxerResolutionAbsentForNonJPEG(t *testing.T) {
	stream := multipartStream("frame", []byte("plainbytes"), []byte("more"))

	d, err := newDemuxer(testContentType, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatal(err)
	}
	for _, ev := range d.push(stream) {
		if _, ok := ev.(FrameResolution); ok {
			t.Fatal("expected no resolution event for non-JPEG payloads")
		}
	}
}

// testJPEG builds a minimal JPEG header with an SOF0 segment.
func testJPEG(width, height int) []byte {
	b := []byte{0xFF, 0xD8}
	b = append(b, 0xFF, 0xE0, 0x00, 0x06, 'J', 'F', 'I', 'F')
	b = append(b, 0xFF, 0xC0, 0x00, 0x11, 0x08,
		byte(height>>8), byte(height), byte(width>>8), byte(width))
	b = append(b, 0x03, 0x01, 0x22, 0x00, 0x02, 0x11, 0x01, 0x03, 0x11, 0x01)
	b = append(b, 0xFF, 0xD9)
	return b
}
