package config

import (
	"os"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
)

var config *Config

type Auth struct {
	SecretKey    string
	PublicKey    string
	AccessExpire int64
}

type Mongo struct {
	URL string
	DB  string
}

type Redis struct {
	Addr     string
	Password string `json:",optional"`
	DB       int    `json:",default=0"`
}

type COS struct {
	BucketURL string
	CDN       string `json:",optional"`
	SecretID  string
	SecretKey string
}

type OpenAI struct {
	APIKey  string
	BaseURL string `json:",optional"`
}

type ARK struct {
	APIKey string
}

type Coze struct {
	PAT     string
	BaseURL string `json:",optional"`
	BotId   string `json:",optional"`
}

// Stream 流式对话相关配置
// 重试次数与不活跃超时是可调参数, 不是固定行为
type Stream struct {
	MaxRetries         int     `json:",default=2"`     // 可重试的provider错误的最大重试次数
	RetryBackoffMs     int64   `json:",default=500"`   // 首次重试退避, 之后指数增长
	InactivityMs       int64   `json:",default=60000"` // 两个chunk之间的最大等待时间
	SessionBuffer      int     `json:",default=64"`    // 每个会话的出站缓冲大小
	HistorySize        int     `json:",default=20"`    // 构造上下文时取的历史消息条数
	DefaultModel       string  `json:",default=gpt-4o"`
	DefaultTemperature float64 `json:",default=0.7"`
	DefaultMaxTokens   int     `json:",default=4000"`
}

type Sensitive struct {
	Dict []string `json:",optional"`
}

type Config struct {
	service.ServiceConf
	ListenOn  string
	Auth      Auth
	Mongo     Mongo
	Cache     cache.CacheConf `json:",optional"`
	Redis     Redis
	COS       COS    `json:",optional"`
	OpenAI    OpenAI `json:",optional"`
	ARK       ARK    `json:",optional"`
	Coze      Coze   `json:",optional"`
	Stream    Stream `json:",optional"`
	Sensitive Sensitive
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return config, nil
}

func GetConfig() *Config {
	return config
}

// SetConfigForTest 测试时注入配置
func SetConfigForTest(c *Config) {
	config = c
}
