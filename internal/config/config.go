package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Question QuestionConfig `mapstructure:"question"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GameConfig 游戏规则配置
type GameConfig struct {
	BoardFile    string       `mapstructure:"board_file"`   // 为空时使用内置棋盘
	Locale       string       `mapstructure:"locale"`       // 金额格式化语言
	InitialMoney int          `mapstructure:"initial_money"`
	StartBonus   int          `mapstructure:"start_bonus"`
	DiceSides    int          `mapstructure:"dice_sides"`
	Seed         uint64       `mapstructure:"seed"` // 非0时使用可复现的随机源
	Property     PropertyRule `mapstructure:"property"`
	AI           AIConfig     `mapstructure:"ai"`
	Pacing       PacingConfig `mapstructure:"pacing"`
}

// PropertyRule 地产规则
type PropertyRule struct {
	MaxLevel     int     `mapstructure:"max_level"`
	UpgradeRatio float64 `mapstructure:"upgrade_ratio"` // 升级费用占地价比例
}

// AIConfig 机器人决策配置
type AIConfig struct {
	DeclineChance float64 `mapstructure:"decline_chance"` // 放弃购买的概率
	SavingsFactor float64 `mapstructure:"savings_factor"` // 资金低于 费用×系数 时不升级
}

// PacingConfig 动画节奏配置（纯展示用途）
type PacingConfig struct {
	DiceRoll     time.Duration `mapstructure:"dice_roll"`
	Step         time.Duration `mapstructure:"step"`
	AIThinking   time.Duration `mapstructure:"ai_thinking"`
	Settle       time.Duration `mapstructure:"settle"`
	BankruptSkip time.Duration `mapstructure:"bankrupt_skip"`
}

// QuestionConfig 出题服务配置
type QuestionConfig struct {
	Provider  string        `mapstructure:"provider"` // local 或 remote
	RemoteURL string        `mapstructure:"remote_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Delay     time.Duration `mapstructure:"delay"` // 本地出题的模拟延迟
}

// ArchiveConfig 错题本配置
type ArchiveConfig struct {
	Driver   string `mapstructure:"driver"` // memory 或 sqlite
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("MATH_TYCOON")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		SetDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		loaded := &Config{}
		if err = v.Unmarshal(loaded); err != nil {
			return
		}
		if err = loaded.Validate(); err != nil {
			return
		}

		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// SetDefaults 设置默认配置值
func SetDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 游戏默认配置
	v.SetDefault("game.board_file", "")
	v.SetDefault("game.locale", "zh-CN")
	v.SetDefault("game.initial_money", 2000)
	v.SetDefault("game.start_bonus", 200)
	v.SetDefault("game.dice_sides", 6)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.property.max_level", 3)
	v.SetDefault("game.property.upgrade_ratio", 0.5)
	v.SetDefault("game.ai.decline_chance", 0.2)
	v.SetDefault("game.ai.savings_factor", 1.5)
	v.SetDefault("game.pacing.dice_roll", "1s")
	v.SetDefault("game.pacing.step", "300ms")
	v.SetDefault("game.pacing.ai_thinking", "1500ms")
	v.SetDefault("game.pacing.settle", "500ms")
	v.SetDefault("game.pacing.bankrupt_skip", "500ms")

	// 出题默认配置
	v.SetDefault("question.provider", "local")
	v.SetDefault("question.remote_url", "")
	v.SetDefault("question.timeout", "3s")
	v.SetDefault("question.delay", "500ms")

	// 错题本默认配置（仅内存，不跨会话保存）
	v.SetDefault("archive.driver", "sqlite")
	v.SetDefault("archive.dsn", "file::memory:?cache=shared")
	v.SetDefault("archive.log_level", "warn")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "math-tycoon.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// Default 返回仅包含默认值的配置
func Default() *Config {
	dv := viper.New()
	SetDefaults(dv)
	c := &Config{}
	// 默认值均为合法值，解析不会失败
	_ = dv.Unmarshal(c)
	return c
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch {
	case c.Game.InitialMoney <= 0:
		return fmt.Errorf("game.initial_money 必须大于0")
	case c.Game.StartBonus < 0:
		return fmt.Errorf("game.start_bonus 不能为负数")
	case c.Game.DiceSides < 1:
		return fmt.Errorf("game.dice_sides 必须大于0")
	case c.Game.Property.MaxLevel < 1:
		return fmt.Errorf("game.property.max_level 必须大于0")
	case c.Game.Property.UpgradeRatio <= 0:
		return fmt.Errorf("game.property.upgrade_ratio 必须大于0")
	case c.Game.AI.DeclineChance < 0 || c.Game.AI.DeclineChance > 1:
		return fmt.Errorf("game.ai.decline_chance 必须在0到1之间")
	}

	switch c.Question.Provider {
	case "local":
	case "remote":
		if c.Question.RemoteURL == "" {
			return fmt.Errorf("question.remote_url 不能为空")
		}
	default:
		return fmt.Errorf("不支持的出题服务: %s", c.Question.Provider)
	}

	switch c.Archive.Driver {
	case "memory", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("不支持的错题本驱动: %s", c.Archive.Driver)
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置重载校验失败: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
}
