// Package csvlog records delivered samples as CSV.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/frame"
)

// Header is the first row of every log.
var Header = []string{"Time", "P1", "P2", "P3", "P4"}

// TimeLayout formats the Time column (local time).
const TimeLayout = "15:04:05"

// maxSuffix bounds the suffixes tried when log files of the same second exist.
const maxSuffix = 100

// FileName returns the log file name for a start time.
func FileName(t time.Time) string {
	return fmt.Sprintf("log_%d.csv", t.Unix())
}

func suffixedName(t time.Time, n int) string {
	if n == 0 {
		return FileName(t)
	}
	return fmt.Sprintf("log_%d_%d.csv", t.Unix(), n)
}

// Writer writes sample rows.
type Writer struct {
	lock   sync.Mutex
	w      *csv.Writer
	closer io.Closer
	name   string
	rows   int
}

// NewWriter writes the header to w. Close closes w if it is an io.Closer.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := &Writer{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		cw.closer = c
	}
	if err := cw.w.Write(Header); err != nil {
		return nil, err
	}
	cw.w.Flush()
	return cw, cw.w.Error()
}

// Create creates a new log file in dir named after now. Existing logs are
// never overwritten: log_<unix>_<n>.csv is used when the name is taken.
func Create(dir string, now time.Time) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	var (
		f    *os.File
		name string
		err  error
	)
	for n := 0; n < maxSuffix; n++ {
		name = filepath.Join(dir, suffixedName(now, n))
		f, err = os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if !os.IsExist(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.name = name
	glog.Infof("logging samples to %s", name)
	return w, nil
}

// Name returns the file name, empty when not created by Create.
func (w *Writer) Name() string {
	return w.name
}

// Rows returns the number of sample rows written.
func (w *Writer) Rows() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.rows
}

// Append writes one row, flushed immediately.
func (w *Writer) Append(s frame.Sample) error {
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	row := make([]string, 0, len(Header))
	row = append(row, at.Local().Format(TimeLayout))
	for _, v := range s.Values {
		row = append(row, strconv.Itoa(int(v)))
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	if err := w.w.Write(row); err != nil {
		return err
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.w.Flush()
	err := w.w.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
