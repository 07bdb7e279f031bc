package link

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// TarmDriver opens ports with github.com/tarm/serial.
// The read timeout is fixed at open, so BytesAvailable on an idle port
// blocks up to the read timeout.
type TarmDriver struct{}

// Open implements Driver.
func (TarmDriver) Open(name string, baud int, readTimeout time.Duration) (Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: readTimeout,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, err
	}
	return &tarmPort{Port: port}, nil
}

type tarmPort struct {
	*serial.Port
}

// Read maps a zero byte EOF, which is how a read timeout surfaces, to (0, nil).
func (p *tarmPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}
