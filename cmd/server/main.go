package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/math-tycoon/internal/api"
	"github.com/wfunc/math-tycoon/internal/archive"
	"github.com/wfunc/math-tycoon/internal/board"
	"github.com/wfunc/math-tycoon/internal/config"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/game"
	"github.com/wfunc/math-tycoon/internal/logger"
	"github.com/wfunc/math-tycoon/internal/question"
	"github.com/wfunc/math-tycoon/internal/rng"
	ws "github.com/wfunc/math-tycoon/internal/websocket"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	engine  *game.Engine
	runner  *game.Runner
	archive archive.Store
	hub     *ws.Hub
	http    *http.Server
	unsub   func()

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 初始化组件并启动服务
func (s *Server) Start() error {
	s.logger.Info("正在启动数学大富翁服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	if err := s.initComponents(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "初始化组件失败")
	}
	s.startServices()

	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	logger.Infof("服务器启动成功，监听 http://%s", s.http.Addr)
	return nil
}

// initComponents 按依赖顺序创建组件
func (s *Server) initComponents() error {
	b, err := board.Load(s.cfg.Game.BoardFile)
	if err != nil {
		return err
	}

	store, err := archive.Open(s.cfg.Archive)
	if err != nil {
		return err
	}
	s.archive = store

	src := rng.New(s.cfg.Game.Seed)
	if s.cfg.Game.Seed != 0 {
		s.logger.Info("使用固定随机种子", zap.Uint64("seed", s.cfg.Game.Seed))
	}
	f := question.NewFormatter(s.cfg.Game.Locale)

	s.engine, err = game.NewEngine(game.Options{
		Board:     b,
		Rules:     game.RulesFromConfig(s.cfg.Game),
		Pacing:    s.cfg.Game.Pacing,
		Source:    src,
		Provider:  question.NewFromConfig(s.cfg.Question, src, f, logger.WithModule("question")),
		Formatter: f,
		Recorder:  store,
		Logger:    logger.WithModule("game"),
	})
	if err != nil {
		return err
	}

	s.runner = game.NewRunner(s.engine, game.DefaultQueueSize)
	s.hub = ws.NewHub(logger.WithModule("websocket"), s.runner, s.engine)
	s.unsub = s.engine.Subscribe(s.hub.PublishSnapshot)

	if s.cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(s.runner, store, s.hub, logger.WithModule("api"))
	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.logger.Info("所有组件初始化完成",
		zap.String("board", b.Name),
		zap.Int("tiles", b.Size()),
		zap.String("archive", s.cfg.Archive.Driver),
		zap.String("question_provider", s.cfg.Question.Provider))
	return nil
}

// startServices 启动后台协程
func (s *Server) startServices() {
	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.runner.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP服务异常退出", zap.Error(err))
			s.cancel()
		}
	}()
}

// WaitForShutdown 等待退出信号或服务异常
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
	case <-s.ctx.Done():
	}
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP服务关闭失败", zap.Error(err))
	}
	if s.unsub != nil {
		s.unsub()
	}

	// 取消主上下文：进行中的回合在下一次停顿时中断
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return errors.New(errors.ErrTimeout, "关闭超时")
	}

	if err := s.archive.Close(); err != nil {
		s.logger.Error("关闭错题本失败", zap.Error(err))
	}
	logger.Cleanup()
	return nil
}

// reloadConfig 热更新：动画节奏和日志级别
func (s *Server) reloadConfig(newCfg *config.Config) {
	s.cfg = newCfg
	s.engine.SetPacing(newCfg.Game.Pacing)
	if err := logger.SetLevel(&newCfg.Log); err != nil {
		logger.Warnf("日志配置重载失败: %v", err)
	}
	s.logger.Info("配置重新加载完成",
		zap.Duration("ai_thinking", newCfg.Game.Pacing.AIThinking),
		zap.String("log_level", newCfg.Log.Level))
}

func printVersion() {
	fmt.Printf("数学大富翁服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
