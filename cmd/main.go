package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"iris/internal/iris"
)

func main() {
	config, err := iris.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	iris.InitLogger(config)

	monitor := iris.NewMonitor(config)

	// 모니터 시작
	if err := monitor.Start(); err != nil {
		slog.Error("Failed to start monitor", "err", err)
		os.Exit(1)
	}

	slog.Info("Iris monitor started")

	// 시그널 수신을 위한 채널 생성
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 시그널 대기
	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig)

	// 모니터 정지
	monitor.Stop()
	slog.Info("Shutdown complete")
}
