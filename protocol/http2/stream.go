package http2

import "github.com/favbox/wind/protocol/http2/priority"

// streamState 是流在 HTTP/2 状态机中的位置，决定该流是否已经
// 进入 RESERVED 或 ACTIVE（参见 priority.StreamRef.State）。
type streamState int

const (
	stateIdle streamState = iota
	stateReservedLocal
	stateReservedRemote
	stateOpen
	stateHalfClosedLocal
	stateHalfClosedRemote
	stateClosed
)

// stream 表示一个流。这是写调度器所需的最小元数据：一个稳定的
// 标识符、当前状态，以及一个供 priority 包挂载其 PriorityNode 的
// 属性槽。实际的请求/响应状态、缓冲区与正文体由连接的服务协程
// 拥有，不在本包范围内（参见 SPEC_FULL.md §1 的范围边界）。
type stream struct {
	id    uint32
	state streamState
	props map[any]any
}

func newStream(id uint32) *stream {
	return &stream{id: id, state: stateIdle, props: make(map[any]any)}
}

func (st *stream) ID() uint32 { return st.id }

func (st *stream) State() priority.StreamState {
	switch st.state {
	case stateReservedLocal, stateReservedRemote:
		return priority.StateReserved
	case stateOpen, stateHalfClosedLocal, stateHalfClosedRemote:
		return priority.StateActive
	case stateClosed:
		return priority.StateClosed
	default:
		return priority.StateIdle
	}
}

func (st *stream) Get(key any) any { return st.props[key] }

func (st *stream) Set(key any, value any) { st.props[key] = value }
