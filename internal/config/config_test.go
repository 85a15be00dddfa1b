package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 2000, c.Game.InitialMoney)
	assert.Equal(t, 200, c.Game.StartBonus)
	assert.Equal(t, 3, c.Game.Property.MaxLevel)
	assert.Equal(t, 0.5, c.Game.Property.UpgradeRatio)
	assert.Equal(t, 0.2, c.Game.AI.DeclineChance)
	assert.Equal(t, 300*time.Millisecond, c.Game.Pacing.Step)
	assert.Equal(t, "local", c.Question.Provider)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"初始资金为0", func(c *Config) { c.Game.InitialMoney = 0 }},
		{"放弃概率越界", func(c *Config) { c.Game.AI.DeclineChance = 1.5 }},
		{"远程出题缺少地址", func(c *Config) { c.Question.Provider = "remote" }},
		{"未知出题服务", func(c *Config) { c.Question.Provider = "gemini" }},
		{"未知错题本驱动", func(c *Config) { c.Archive.Driver = "mysql" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("game:\n  initial_money: 1500\n  pacing:\n    step: 10ms\nquestion:\n  delay: 0s\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c := &Config{}
	require.NoError(t, v.Unmarshal(c))

	assert.Equal(t, 1500, c.Game.InitialMoney)
	assert.Equal(t, 10*time.Millisecond, c.Game.Pacing.Step)
	assert.Equal(t, time.Duration(0), c.Question.Delay)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 200, c.Game.StartBonus)
}
