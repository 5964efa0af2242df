package mjpeg

import (
	"fmt"
	"strings"
)

// extractBoundary는 Content-Type 헤더 값에서 boundary 토큰을 추출한다.
// 따옴표, 선행 "--", 후행 파라미터(";" 이후)는 제거한다.
// multipart/x-mixed-replace가 아니거나 boundary가 없으면 프로토콜 에러.
func extractBoundary(contentType string) (string, error) {
	lower := strings.ToLower(contentType)
	if !strings.Contains(lower, contentTypeMixedReplace) {
		return "", fmt.Errorf("%w: unexpected content type %q", ErrProtocol, contentType)
	}

	i := strings.Index(lower, boundaryParam)
	if i < 0 {
		return "", fmt.Errorf("%w: missing boundary parameter in %q", ErrProtocol, contentType)
	}

	token := contentType[i+len(boundaryParam):]
	if j := strings.IndexByte(token, ';'); j >= 0 {
		token = token[:j]
	}
	token = strings.TrimSpace(token)
	token = strings.Trim(token, `"`)
	token = strings.TrimPrefix(token, "--")
	token = strings.TrimSpace(token)

	if token == "" {
		return "", fmt.Errorf("%w: empty boundary parameter in %q", ErrProtocol, contentType)
	}
	return token, nil
}
