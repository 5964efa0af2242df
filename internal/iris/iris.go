package iris

import (
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger는 애플리케이션 기본 slog 로거를 설정합니다.
// tint 핸들러로 컬러 출력하고, source 경로는 프로젝트 루트 기준 상대 경로로 줄입니다.
func InitLogger(config *Config) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := getProjectRoot(filename)

	// source 속성의 파일 경로를 프로젝트 루트 기준 상대 경로로 변환합니다.
	replaceAttr := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			source, ok := a.Value.Any().(*slog.Source)
			if !ok {
				return a
			}
			if projectRoot != "" && strings.HasPrefix(source.File, projectRoot) {
				source.File = source.File[len(projectRoot)+1:]
			}
			return slog.Any(a.Key, source)
		}
		return a
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:       config.GetSlogLevel(),
		AddSource:   true,
		NoColor:     false,
		TimeFormat:  time.RFC3339,
		ReplaceAttr: replaceAttr,
	})

	slog.SetDefault(slog.New(handler))
}

// getProjectRoot는 주어진 파일 경로에서 상위 디렉토리 경로를 반환하는 헬퍼 함수입니다.
func getProjectRoot(filepath string) string {
	dir := filepath
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == os.PathSeparator {
			return dir[:i]
		}
	}
	return ""
}
