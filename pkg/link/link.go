package link

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

const (
	// BaudRate is the fixed line speed of the ADC board.
	BaudRate = 115200
	// DefaultReadTimeout bounds every blocking read.
	DefaultReadTimeout = 100 * time.Millisecond

	readBufferSize = 1024
)

// Port is an opened serial port.
type Port interface {
	io.ReadWriteCloser
}

// timeoutSetter is implemented by ports able to change the read timeout
// after open (go.bug.st/serial).
type timeoutSetter interface {
	SetReadTimeout(time.Duration) error
}

// State is a snapshot of the link state.
type State struct {
	Open bool
	Port string
	// Generation increments every time a port is opened.
	Generation uint64
}

// Link owns at most one open serial port.
// Open/Close are expected from a single owner; reads from one reader
// goroutine; writes from any goroutine.
type Link struct {
	Driver      Driver
	ReadTimeout time.Duration

	lock sync.RWMutex
	port Port
	name string
	gen  uint64

	rxLock sync.Mutex
	rx     []byte
	rxGen  uint64
	buf    []byte

	writeLock sync.Mutex
}

// New creates a Link using the driver.
func New(driver Driver) *Link {
	return &Link{Driver: driver, ReadTimeout: DefaultReadTimeout}
}

func (l *Link) driver() Driver {
	if l.Driver == nil {
		return DefaultDriver
	}
	return l.Driver
}

func (l *Link) readTimeout() time.Duration {
	if l.ReadTimeout <= 0 {
		return DefaultReadTimeout
	}
	return l.ReadTimeout
}

// Open opens the named port at BaudRate. An already open port is closed first.
func (l *Link) Open(name string) error {
	if name == "" {
		return &Error{Op: "open", Err: ErrNotFound}
	}
	l.Close()
	port, err := l.driver().Open(name, BaudRate, l.readTimeout())
	if err != nil {
		return &Error{Op: "open", Port: name, Err: classify(err)}
	}
	l.lock.Lock()
	l.port, l.name = port, name
	l.gen++
	l.lock.Unlock()
	glog.Infof("link %s open at %d baud", name, BaudRate)
	return nil
}

// Close releases the port. Closing a closed link is a no-op.
func (l *Link) Close() error {
	l.lock.Lock()
	port, name := l.port, l.name
	l.port, l.name = nil, ""
	l.lock.Unlock()
	if port == nil {
		return nil
	}
	glog.Infof("link %s closed", name)
	if err := port.Close(); err != nil {
		return &Error{Op: "close", Port: name, Err: err}
	}
	return nil
}

// State returns the current state.
func (l *Link) State() State {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return State{Open: l.port != nil, Port: l.name, Generation: l.gen}
}

// IsOpen indicates a port is open.
func (l *Link) IsOpen() bool {
	return l.State().Open
}

func (l *Link) current() (Port, string, uint64) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.port, l.name, l.gen
}

// BytesAvailable returns the number of bytes ready for ReadAvailable.
// When nothing is buffered it polls the port once without waiting if the
// port supports it, otherwise bounded by ReadTimeout.
// A closed link has nothing available.
func (l *Link) BytesAvailable() (int, error) {
	l.rxLock.Lock()
	defer l.rxLock.Unlock()
	port, name, gen := l.current()
	if port == nil {
		return 0, nil
	}
	l.dropStale(gen)
	if len(l.rx) == 0 {
		if err := l.fill(port, name, true); err != nil {
			return 0, err
		}
	}
	return len(l.rx), nil
}

// ReadAvailable returns the buffered bytes, or reads once bounded by
// ReadTimeout. Returns empty on timeout.
func (l *Link) ReadAvailable() ([]byte, error) {
	l.rxLock.Lock()
	defer l.rxLock.Unlock()
	port, name, gen := l.current()
	if port == nil {
		return nil, &Error{Op: "read", Err: ErrNotOpen}
	}
	l.dropStale(gen)
	if len(l.rx) == 0 {
		if err := l.fill(port, name, false); err != nil {
			return nil, err
		}
	}
	data := l.rx
	l.rx = nil
	return data, nil
}

// dropStale discards bytes buffered from a previous connection.
func (l *Link) dropStale(gen uint64) {
	if l.rxGen != gen {
		l.rx, l.rxGen = nil, gen
	}
}

func (l *Link) fill(port Port, name string, nonBlocking bool) error {
	if nonBlocking {
		if ts, ok := port.(timeoutSetter); ok {
			if err := ts.SetReadTimeout(0); err == nil {
				defer ts.SetReadTimeout(l.readTimeout())
			}
		}
	}
	if l.buf == nil {
		l.buf = make([]byte, readBufferSize)
	}
	n, err := port.Read(l.buf)
	if n > 0 {
		l.rx = append(l.rx, l.buf[:n]...)
	}
	if err == nil || os.IsTimeout(err) {
		return nil
	}
	if current, _, _ := l.current(); current != port {
		// closed underneath the read.
		return &Error{Op: "read", Port: name, Err: ErrNotOpen}
	}
	return &Error{Op: "read", Port: name, Err: err}
}

// Write writes a complete encoded line.
func (l *Link) Write(p []byte) error {
	l.writeLock.Lock()
	defer l.writeLock.Unlock()
	port, name, _ := l.current()
	if port == nil {
		return &Error{Op: "write", Err: ErrNotOpen}
	}
	for len(p) > 0 {
		n, err := port.Write(p)
		if err != nil {
			return &Error{Op: "write", Port: name, Err: err}
		}
		if n == 0 {
			return &Error{Op: "write", Port: name, Err: io.ErrShortWrite}
		}
		p = p[n:]
	}
	return nil
}
