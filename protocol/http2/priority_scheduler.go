package http2

import (
	"strconv"

	"github.com/favbox/wind/protocol/http2/priority"
)

// PriorityWriterScheduler 是基于 priority.Distributor 实现的 WriterScheduler：
// 一个 RFC 7540 §5.3 依赖树 + 加权公平队列字节分发器，取代早期版本中
// 简单的按到达顺序轮转调度。
//
// 本结构体本身不含调度逻辑——它只是把 WriterScheduler 的三个方法
// 翻译成 Distributor 期望的调用形状，逻辑全部在 priority 包中。
type PriorityWriterScheduler struct {
	dist    *priority.Distributor
	streams map[uint32]*stream
	conn    *schedulerConnection
}

// NewPriorityWriterScheduler 构造一个由 root 为连接根流的优先级树驱动的
// WriterScheduler。maxStateOnlySize 为 0 时完全禁止保留孤立的优先级节点。
func NewPriorityWriterScheduler(maxStateOnlySize int) (*PriorityWriterScheduler, error) {
	s := &PriorityWriterScheduler{
		streams: make(map[uint32]*stream),
	}
	s.conn = &schedulerConnection{s: s}

	dist, err := priority.NewDistributor(s.conn, maxStateOnlySize)
	if err != nil {
		return nil, err
	}
	s.dist = dist
	return s, nil
}

// SetAllocationQuantum 转发至 Distributor.SetAllocationQuantum。
func (s *PriorityWriterScheduler) SetAllocationQuantum(q int32) error {
	return s.dist.SetAllocationQuantum(q)
}

// OpenStream 实现 WriterScheduler。
func (s *PriorityWriterScheduler) OpenStream(streamID uint32, options OpenStreamOptions) {
	if _, exists := s.streams[streamID]; exists {
		panic("http2: OpenStream called twice for stream " + strconv.FormatUint(uint64(streamID), 10))
	}
	st := newStream(streamID)
	st.state = stateOpen
	s.streams[streamID] = st
	s.dist.OnStreamAdded(st)

	if options.PusherID != 0 {
		s.dist.UpdateDependencyTree(streamID, options.PusherID, 16, false)
	}
}

// CloseStream 实现 WriterScheduler。
func (s *PriorityWriterScheduler) CloseStream(streamID uint32) {
	st, ok := s.streams[streamID]
	if !ok {
		panic("http2: CloseStream called for unopened stream " + strconv.FormatUint(uint64(streamID), 10))
	}
	st.state = stateClosed
	s.dist.OnStreamRemoved(st)
	delete(s.streams, streamID)
}

// AdjustStream 实现 WriterScheduler。RFC 7540 允许在任意状态的流上
// 发送 PRIORITY 帧，包括尚未打开或已关闭的流，因此这里不检查 streams
// 是否持有该 id：Distributor 会按需创建一个优先级专用的保留节点。
func (s *PriorityWriterScheduler) AdjustStream(streamID uint32, p PriorityParam) {
	s.dist.UpdateDependencyTree(streamID, p.StreamDep, p.Weight, p.Exclusive)
}

// UpdateStreamableBytes 报告 streamID 当前是否有待发送的数据以及流控
// 窗口大小，供下一次 Distribute 使用。
func (s *PriorityWriterScheduler) UpdateStreamableBytes(streamID uint32, n int32, hasFrame bool, window int32) {
	st, ok := s.streams[streamID]
	if !ok {
		return
	}
	s.dist.UpdateStreamableBytes(st, n, hasFrame, window)
}

// Distribute 转发至 Distributor.Distribute。
func (s *PriorityWriterScheduler) Distribute(maxBytes int32, w priority.Writer) (bool, error) {
	return s.dist.Distribute(maxBytes, w)
}

// schedulerConnection 适配 PriorityWriterScheduler 到 priority.Connection：
// 一个稳定的连接根流（id 0）、按 id 查找已打开的流，以及一个自增的
// 属性键分配器。
type schedulerConnection struct {
	s       *PriorityWriterScheduler
	root    *stream
	nextKey int
}

func (c *schedulerConnection) ConnectionStream() priority.StreamRef {
	if c.root == nil {
		c.root = newStream(0)
		c.root.state = stateOpen
	}
	return c.root
}

func (c *schedulerConnection) Stream(id uint32) (priority.StreamRef, bool) {
	st, ok := c.s.streams[id]
	return st, ok
}

func (c *schedulerConnection) NewKey() any {
	c.nextKey++
	return schedulerPropKey(c.nextKey)
}

func (c *schedulerConnection) AddListener(priority.Listener) {
	// PriorityWriterScheduler owns exactly one Distributor and registers
	// it implicitly via NewDistributor; there is no second listener to
	// track.
}

type schedulerPropKey int
