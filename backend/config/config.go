package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Log struct {
		// glog -v 级别
		Verbosity int `mapstructure:"verbosity"`
	} `mapstructure:"log"`
	Check struct {
		Rounds       int     `mapstructure:"rounds"`
		Workers      int     `mapstructure:"workers"`
		Seed         uint64  `mapstructure:"seed"`
		MaxDocLength int     `mapstructure:"max_doc_length"`
		MaxOps       int     `mapstructure:"max_ops"`
		EmbedRatio   float64 `mapstructure:"embed_ratio"`
	} `mapstructure:"check"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.verbosity", 0)
	v.SetDefault("check.rounds", 1000)
	v.SetDefault("check.workers", 8)
	v.SetDefault("check.seed", 1)
	v.SetDefault("check.max_doc_length", 32)
	v.SetDefault("check.max_ops", 6)
	v.SetDefault("check.embed_ratio", 0.1)
}

// Load 读取配置。file 为空时按 deltaConfig.yaml 的默认搜索路径查找，
// 找不到配置文件时使用默认值；环境变量 DELTA_CHECK_ROUNDS 等可覆盖任意字段。
func Load(file string) (*Config, error) {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DELTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("deltaConfig")
		v.SetConfigType("yaml")
		// 兼容从项目根目录或 backend 目录启动
		v.AddConfigPath("./backend/config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
