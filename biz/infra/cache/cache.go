package cache

// cache 是redis客户端的统一出口

import (
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/redis/go-redis/v9"
)

// Cmdable 直接复用go-redis的命令接口, 便于测试时替换
type Cmdable = redis.Cmdable

// Nil 键不存在
var Nil = redis.Nil

// NewRedis 根据配置创建redis客户端
func NewRedis(c *config.Config) Cmdable {
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}
