package mqtt

import "github.com/sirupsen/logrus"

type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds messages published while the broker is unreachable. When
// full the oldest message is dropped. Callers hold the publisher lock.
type ringBuffer struct {
	msgs    []bufferedMsg
	next    int // slot for the next push
	count   int
	dropped bool // a message was lost since the last drain
	log     logrus.FieldLogger
}

func newRingBuffer(capacity int, log logrus.FieldLogger) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ringBuffer{msgs: make([]bufferedMsg, capacity), log: log}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	size := len(r.msgs)
	r.msgs[r.next] = msg
	r.next = (r.next + 1) % size
	if r.count < size {
		r.count++
		return
	}
	if !r.dropped {
		r.log.WithField("capacity", size).Warn("buffer full, dropping oldest")
		r.dropped = true
	}
}

// drainAll empties the buffer and returns its messages oldest first.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}
	size := len(r.msgs)
	first := (r.next - r.count + size) % size
	out := make([]bufferedMsg, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.msgs[(first+i)%size])
	}
	r.next, r.count, r.dropped = 0, 0, false
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
