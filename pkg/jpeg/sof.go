package jpeg

import "encoding/binary"

// JPEG 마커
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
	markerTEM    = 0x01
	markerDHT    = 0xC4
	markerJPG    = 0xC8
	markerDAC    = 0xCC
	markerRST0   = 0xD0
	markerRST7   = 0xD7
)

// Dimensions는 JPEG 바이트에서 가로/세로 크기를 추출한다.
// SOI로 시작하지 않거나, SOF 세그먼트 전에 데이터가 끝나거나 깨진 경우 ok=false.
// 에러를 반환하지 않는다. 호출자는 실패를 무시하고 진행하면 된다.
func Dimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 2 || data[0] != markerPrefix || data[1] != markerSOI {
		return 0, 0, false
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != markerPrefix {
			return 0, 0, false
		}

		marker := data[pos+1]

		// fill byte: 0xFF가 연속되면 마지막 것만 마커
		if marker == markerPrefix {
			pos++
			continue
		}

		// 길이 필드가 없는 단독 마커
		if marker == markerTEM || marker == markerSOI || (marker >= markerRST0 && marker <= markerRST7) {
			pos += 2
			continue
		}

		if marker == markerEOI {
			return 0, 0, false
		}

		// SOF0~SOF15 중 테이블 마커(DHT, JPG, DAC) 제외
		if isSOF(marker) {
			if pos+9 > len(data) {
				return 0, 0, false
			}
			height = int(binary.BigEndian.Uint16(data[pos+5 : pos+7]))
			width = int(binary.BigEndian.Uint16(data[pos+7 : pos+9]))
			if width == 0 || height == 0 {
				return 0, 0, false
			}
			return width, height, true
		}

		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if segLen < 2 {
			return 0, 0, false
		}
		pos += 2 + segLen
	}

	return 0, 0, false
}

func isSOF(marker byte) bool {
	if marker < 0xC0 || marker > 0xCF {
		return false
	}
	return marker != markerDHT && marker != markerJPG && marker != markerDAC
}
