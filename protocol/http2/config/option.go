package config

import "time"

// Config 保存连接级别的调度配置：读写时限与 WFQ 字节分发器的两个调节参数。
type Config struct {
	ReadTimeout time.Duration // 读取正文的超时时长

	// 指定每个客户端同时可打开的并发流的数量。
	// 若为零，则根据 HTTP/2 规范的建议默认为 100个。
	MaxConcurrentStreams uint32

	// IdleTimeout 指定了空闲客户端在多长时间内应使用 GOAWAY 帧关闭。
	// PING 帧不被视为 IdleTimeout 的活动。
	IdleTimeout time.Duration

	// AllocationQuantum 是 WFQ 字节分发器每次调度步骤的最小分配量，
	// 用于摊销调度开销并保证小流的前进速度。必须为正数，默认 1024。
	AllocationQuantum int32

	// MaxStateOnlySize 是优先级专用（无关联活跃流）节点保留集合的
	// 最大规模。必须 ≥ 0，默认 5；为 0 时完全禁止保留。
	MaxStateOnlySize int
}

// Option 用于设置 HTTP2 Config 的唯一结构体。
type Option struct {
	F func(o *Config)
}

func (o *Config) Apply(opts []Option) {
	for _, opt := range opts {
		opt.F(o)
	}
}

// WithReadTimeout 用于设置读取正文的超时时长。
func WithReadTimeout(t time.Duration) Option {
	return Option{F: func(o *Config) {
		o.ReadTimeout = t
	}}
}

// WithMaxConcurrentStreams 指定每个客户端同时可打开的并发流的数量。
func WithMaxConcurrentStreams(n uint32) Option {
	return Option{F: func(o *Config) {
		o.MaxConcurrentStreams = n
	}}
}

// WithIdleTimeout 设置连接的空闲超时时间。默认 DefaultMaxIdleConnDuration。
func WithIdleTimeout(t time.Duration) Option {
	return Option{F: func(o *Config) {
		o.IdleTimeout = t
	}}
}

// WithAllocationQuantum 设置 WFQ 字节分发器的最小分配量。n 必须为正数。
func WithAllocationQuantum(n int32) Option {
	return Option{F: func(o *Config) {
		o.AllocationQuantum = n
	}}
}

// WithMaxStateOnlySize 设置优先级专用节点保留集合的最大规模。n 必须 ≥ 0。
func WithMaxStateOnlySize(n int) Option {
	return Option{F: func(o *Config) {
		o.MaxStateOnlySize = n
	}}
}

// DefaultMaxIdleConnDuration 闲置长连接超过此时长后会被关闭。
const DefaultMaxIdleConnDuration = 10 * time.Second

func NewConfig(opts ...Option) *Config {
	c := &Config{
		IdleTimeout:       DefaultMaxIdleConnDuration,
		AllocationQuantum: 1024,
		MaxStateOnlySize:  5,
	}
	c.Apply(opts)
	return c
}
