package reader

import "bytes"

// MaxLineLength bounds a partial line. Longer lines are discarded up to the
// next newline.
const MaxLineLength = 256

// Reassembler splits a byte stream delivered in arbitrary chunks into lines.
type Reassembler struct {
	MaxLineLength int

	buf        []byte
	discarding bool
}

// Feed appends a chunk and returns every completed line, without the line
// terminator (\n or \r\n).
func (r *Reassembler) Feed(chunk []byte) (lines [][]byte) {
	max := r.MaxLineLength
	if max <= 0 {
		max = MaxLineLength
	}
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			if !r.discarding {
				r.buf = append(r.buf, chunk...)
				if len(r.buf) > max {
					r.buf, r.discarding = r.buf[:0], true
				}
			}
			return
		}
		if !r.discarding && len(r.buf)+i <= max {
			line := append(r.buf, chunk[:i]...)
			line = bytes.TrimSuffix(line, []byte{'\r'})
			lines = append(lines, append([]byte(nil), line...))
		}
		r.buf, r.discarding = r.buf[:0], false
		chunk = chunk[i+1:]
	}
	return
}

// Pending returns the length of the incomplete line held.
func (r *Reassembler) Pending() int {
	return len(r.buf)
}

// Reset drops any incomplete line.
func (r *Reassembler) Reset() {
	r.buf, r.discarding = r.buf[:0], false
}
