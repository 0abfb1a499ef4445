// Package priority 实现 HTTP/2 优先级依赖树与加权公平队列（WFQ）
// 字节分发器。给定一条承载多个并发逻辑流的连接，每个流带有一个优先级
// 权重及一个父依赖，分发器在每次刷新机会上决定各流可写入的字节数，
// 使带宽随时间按权重比例分配，同时遵循 HTTP/2 优先级依赖树
// （RFC 7540 §5.3）。
//
// 本包不解析帧、不管理流控窗口、不写入套接字——这些都是调用方
// （protocol/http2 包中的连接服务循环）的职责，本包只通过两个边界
// 接口（StreamRef、Writer）与其协作。
package priority

// StreamState 是流在 HTTP/2 状态机中的粗粒度位置，分发器只关心
// 一个流是否已进入 RESERVED 或 ACTIVE。
type StreamState int

const (
	// StateIdle 表示流尚未被对端打开。
	StateIdle StreamState = iota
	// StateReserved 表示流通过 PUSH_PROMISE 被保留。
	StateReserved
	// StateActive 表示流已打开或半关闭，仍可承载帧。
	StateActive
	// StateClosed 表示流已完全关闭。
	StateClosed
)

// StreamRef 是分发器消费的流对象的最小接口：一个稳定标识符、
// 粗粒度状态，以及一个用于挂载优先级节点的属性槽。
type StreamRef interface {
	// ID 返回该流的 HTTP/2 流标识符（u31，0 为连接根流）。
	ID() uint32
	// State 返回该流当前的粗粒度状态。
	State() StreamState
	// Get 返回之前通过 Set 存入该键的值，若不存在则为 nil。
	Get(key any) any
	// Set 在该流上存储一个键值对，供分发器挂载内部状态。
	Set(key any, value any)
}

// Writer 是分发器在 Distribute 期间为选中的流调用的唯一协作接口。
// Write 应当恰好消费 n 字节并发出至少一帧（n 为 0 时可发出空帧）。
type Writer interface {
	Write(stream StreamRef, n int32) error
}

// Listener 接收连接上的流生命周期事件。Distributor 实现此接口并
// 通过 Connection.AddListener 注册自己。
type Listener interface {
	OnStreamAdded(s StreamRef)
	OnStreamActive(s StreamRef)
	OnStreamClosed(s StreamRef)
	OnStreamRemoved(s StreamRef)
}

// Connection 是分发器消费的外部协作对象：连接根流、按标识符查找
// 流、分配属性键，以及注册流生命周期监听器。
type Connection interface {
	// ConnectionStream 返回标识符为 0 的连接根流。
	ConnectionStream() StreamRef
	// Stream 按标识符返回一个已知的活跃流。
	Stream(id uint32) (StreamRef, bool)
	// NewKey 分配一个供 Set/Get 使用的唯一属性键。
	NewKey() any
	// AddListener 注册一个流生命周期监听器。
	AddListener(l Listener)
}
