package tcpserver

import (
	"bufio"
	"net"
	"time"
)

// connSink adapts a TCP connection to ports.Sink: buffered line writes
// with an explicit flush. A short write deadline keeps a hung consumer
// from stalling the broadcast pass forever; a timed-out write fails the
// sink and the registry prunes it.
type connSink struct {
	conn         net.Conn
	w            *bufio.Writer
	writeTimeout time.Duration
}

func newConnSink(conn net.Conn, writeTimeout time.Duration) *connSink {
	return &connSink{
		conn:         conn,
		w:            bufio.NewWriter(conn),
		writeTimeout: writeTimeout,
	}
}

func (s *connSink) WriteLine(payload string) error {
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if _, err := s.w.WriteString(payload); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *connSink) Flush() error {
	return s.w.Flush()
}

func (s *connSink) Close() error {
	return s.conn.Close()
}

func (s *connSink) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}
