package conf

import (
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/rc/schema"
	"github.com/txix-open/jsonschema"
)

const (
	defaultQueueTtl           = 24 * time.Hour
	defaultDrainBatchSize     = 25
	defaultDrainInterval      = 30 * time.Second
	defaultStreamPushInterval = 5 * time.Second
	defaultSubmissionTimeout  = 15 * time.Second
)

func init() {
	schema.CustomGenerators.Register("logLevel", func(field reflect.StructField, t *jsonschema.Schema) {
		t.Type = "string"
		t.Enum = []interface{}{"debug", "info", "error", "fatal"}
	})
}

type Remote struct {
	Redis      *Redis      `schema:"Настройки Redis,обязательно: единственное общее хранилище счётчиков и очереди"`
	Http       Http        `schema:"Настройки HTTP"`
	Logging    Logging     `schema:"Настройки логирования"`
	RateLimits []RateLimit `schema:"Ограничения частоты запросов,окно фиксированное, задаётся отдельно для каждого ресурса"`
	Capacity   Capacity    `schema:"Суточный бюджет запросов,сбрасывается в 00:00 UTC"`
	Queue      Queue       `schema:"Очередь отложенных приёмов прогнозов"`
	Caching    Caching     `schema:"Кеширование статистики"`
	Submission Submission  `schema:"Настройки сервиса приёма прогнозов"`
	Identity   Identity    `schema:"Настройки анонимизации клиентов"`
}

type Identity struct {
	Salt string `valid:"required" schema:"Соль хеширования,используется при анонимизации идентификатора клиента"`
}

type Submission struct {
	AcceptUrl    string `valid:"required" schema:"Адрес приёма прогноза,внутренний endpoint сервиса прогнозов"`
	StatsUrl     string `valid:"required" schema:"Адрес агрегированной статистики,внутренний endpoint сервиса прогнозов"`
	TimeoutInSec int    `schema:"Таймаут запроса,в секундах, по умолчанию 15"`
}

type Http struct {
	MaxRequestBodySizeInMb int64 `valid:"required" schema:"Максимальная длинна тела запроса,в мегабайтах"`
}

type Logging struct {
	LogLevel         log.Level `schemaGen:"logLevel" schema:"Уровень логирования,логирование запросов осуществляется на уровне debug"`
	RequestLogEnable bool      `schema:"Включить логирование запросов"`
}

type RateLimit struct {
	Resource    string `valid:"required" schema:"Имя ресурса"`
	MaxCount    int64  `valid:"required" schema:"Количество запросов в окне"`
	WindowInSec int    `valid:"required" schema:"Длительность окна,в секундах"`
}

type Capacity struct {
	RequestsPerDay int64 `valid:"required" schema:"Запросов в сутки,общий бюджет на весь сервис"`
}

type Queue struct {
	TtlInSec           int `schema:"Время жизни элемента очереди,в секундах, по умолчанию 86400"`
	DrainBatchSize     int `schema:"Размер пачки при разгрузке очереди,по умолчанию 25"`
	DrainIntervalInSec int `schema:"Интервал разгрузки очереди,в секундах, по умолчанию 30"`
}

type Caching struct {
	StatsTtlInSec           int `valid:"required" schema:"Базовое время кеширования статистики,в секундах"`
	StreamPushIntervalInSec int `schema:"Интервал отправки состояния в websocket,в секундах, по умолчанию 5"`
}

type Redis struct {
	Address  string         `schema:"Адрес,обязателено, если sentinel не указан"`
	Username string         `schema:"Имя пользовтаеля"`
	Password string         `schema:"Пароль"`
	Sentinel *RedisSentinel `schema:"Настройки sentinel,обязательно, если address не указан"`
}

type RedisSentinel struct {
	Addresses  []string `valid:"required" schema:"Адреса нод в кластере"`
	MasterName string   `valid:"required" schema:"Имя мастера"`
	Username   string   `schema:"Имя пользовтаеля в sentinel"`
	Password   string   `schema:"Пароль в sentinel"`
}

func (r Remote) Validate() error {
	if r.Redis == nil {
		return errors.New("redis is required")
	}
	if r.Redis.Sentinel == nil && r.Redis.Address == "" {
		return errors.New("invalid redis config. sentinel or address are required")
	}
	return nil
}

func (q Queue) GetTtl() time.Duration {
	if q.TtlInSec <= 0 {
		return defaultQueueTtl
	}
	return time.Duration(q.TtlInSec) * time.Second
}

func (q Queue) GetDrainBatchSize() int {
	if q.DrainBatchSize <= 0 {
		return defaultDrainBatchSize
	}
	return q.DrainBatchSize
}

func (q Queue) GetDrainInterval() time.Duration {
	if q.DrainIntervalInSec <= 0 {
		return defaultDrainInterval
	}
	return time.Duration(q.DrainIntervalInSec) * time.Second
}

func (s Submission) GetTimeout() time.Duration {
	if s.TimeoutInSec <= 0 {
		return defaultSubmissionTimeout
	}
	return time.Duration(s.TimeoutInSec) * time.Second
}

func (c Caching) GetStatsTtl() time.Duration {
	return time.Duration(c.StatsTtlInSec) * time.Second
}

func (c Caching) GetStreamPushInterval() time.Duration {
	if c.StreamPushIntervalInSec <= 0 {
		return defaultStreamPushInterval
	}
	return time.Duration(c.StreamPushIntervalInSec) * time.Second
}

// DefaultRateLimits is applied when no limits were configured remotely.
func DefaultRateLimits() []RateLimit {
	return []RateLimit{
		{Resource: "submit", MaxCount: 10, WindowInSec: 60},
		{Resource: "update", MaxCount: 30, WindowInSec: 60},
		{Resource: "read", MaxCount: 60, WindowInSec: 60},
	}
}
