package wire

import "io"

// WriteFull writes all of p to w, looping over short writes. A write that
// makes no progress without reporting an error yields io.ErrShortWrite.
func WriteFull(w io.Writer, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := w.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}
