package archive

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/logger"
	"github.com/wfunc/math-tycoon/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore 基于gorm的错题本
type GormStore struct {
	db *gorm.DB
}

// OpenSQLite 打开sqlite错题本并迁移表结构
func OpenSQLite(dsn, logLevel string) (*GormStore, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 NewGormLogger(logger.WithModule("archive"), parseGormLevel(logLevel)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseConnect, "打开错题本失败")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseConnect, "获取数据库实例失败")
	}
	// 内存库每个连接是独立的数据库
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB.SetMaxOpenConns(1)
	}

	return NewGormStore(db)
}

// NewGormStore 使用已有连接创建错题本
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.WrongAnswer{}); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseConnect, "迁移错题表失败")
	}
	logger.WithModule("archive").Info("错题本已就绪", zap.String("dialect", db.Dialector.Name()))
	return &GormStore{db: db}, nil
}

// Record 保存错题
func (s *GormStore) Record(ctx context.Context, w *models.WrongAnswer) error {
	if err := validate(w); err != nil {
		return err
	}
	start := time.Now()
	rec := *w
	rec.ID = 0
	err := s.db.WithContext(ctx).Create(&rec).Error
	logger.LogDatabaseOperation("insert", rec.TableName(), time.Since(start), err)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "保存错题失败")
	}
	return nil
}

// List 查询错题
func (s *GormStore) List(ctx context.Context, q Query) ([]models.WrongAnswer, error) {
	start := time.Now()
	tx := s.db.WithContext(ctx).Model(&models.WrongAnswer{})
	if q.GameID != "" {
		tx = tx.Where("game_id = ?", q.GameID)
	}
	if q.Op != "" {
		tx = tx.Where("op = ?", q.Op)
	}

	out := []models.WrongAnswer{}
	err := tx.Order("created_at DESC").Order("id DESC").Limit(q.limit()).Find(&out).Error
	logger.LogDatabaseOperation("select", models.WrongAnswer{}.TableName(), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "查询错题失败")
	}
	return out, nil
}

// Summary 错题统计
func (s *GormStore) Summary(ctx context.Context) (*Summary, error) {
	var rows []struct {
		Op    models.OpKind
		Count int
	}
	err := s.db.WithContext(ctx).
		Model(&models.WrongAnswer{}).
		Select("op, COUNT(*) AS count").
		Group("op").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "统计错题失败")
	}

	counts := make(map[models.OpKind]int, len(rows))
	for _, r := range rows {
		counts[r.Op] = r.Count
	}
	return summarize(counts), nil
}

// Close 关闭连接
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// GormLogger GORM日志适配器
type GormLogger struct {
	logger   *zap.Logger
	logLevel gormlogger.LogLevel
}

// NewGormLogger 创建GORM日志适配器
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{logger: l, logLevel: level}
}

// LogMode 设置日志级别
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormLogger{logger: l.logger, logLevel: level}
}

// Info 输出信息日志
func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

// Warn 输出警告日志
func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

// Error 输出错误日志
func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace 输出SQL追踪日志
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= gormlogger.Error:
		l.logger.Error("SQL执行错误",
			zap.Error(err),
			zap.String("sql", sql),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
		)
	case elapsed > 200*time.Millisecond && l.logLevel >= gormlogger.Warn:
		l.logger.Warn("SQL执行缓慢",
			zap.String("sql", sql),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
		)
	case l.logLevel >= gormlogger.Info:
		l.logger.Debug("SQL执行",
			zap.String("sql", sql),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
		)
	}
}
