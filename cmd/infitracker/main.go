package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shiroemons/go-infitracker/internal/infinitas/app"
	"github.com/shiroemons/go-infitracker/internal/infinitas/config"
)

func main() {
	// コマンドライン引数の解析
	flags := config.ParseFlags()

	// バージョン表示の処理
	config.HandleVersion(flags.ShowVersion)

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewDebugLogger(flags.DebugMode)
	if cfg.Files.Log != "" {
		logFile, err := os.OpenFile(cfg.Files.Log, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "警告: ログファイルを開けませんでした: %v\n", err)
		} else {
			defer logFile.Close()
			logger = logger.WithFile(logFile)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			logger.Printf("メトリクスを http://%s/metrics で公開します\n", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, nil); err != nil {
				fmt.Fprintf(os.Stderr, "警告: メトリクスサーバーが停止しました: %v\n", err)
			}
		}()
	}

	// アプリケーションの実行
	application := app.NewWithOptions(cfg, app.Options{
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
		PID:        uint32(flags.PID),
	})
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		stop()
		os.Exit(1)
	}
}
