package mqtt

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages while the
// broker is unreachable. When full, the oldest message is dropped so
// the most recent lamp state always survives a long outage.
// Not safe for concurrent use — caller must synchronize.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	dropped  int // messages overwritten since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == r.capacity {
		// Overwrite oldest: head is already pointing at it.
		r.dropped++
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// drain empties the buffer, returning the queued messages oldest first
// and the number of messages lost to overflow since the last drain.
func (r *ringBuffer) drain() ([]bufferedMsg, int) {
	dropped := r.dropped
	if r.count == 0 {
		r.dropped = 0
		return nil, dropped
	}

	result := make([]bufferedMsg, r.count)
	// Oldest item is at (head - count) mod capacity.
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.dropped = 0
	return result, dropped
}

func (r *ringBuffer) len() int {
	return r.count
}
