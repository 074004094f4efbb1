package ssa

import "io"

// WriteTo writes the source Functions of the Program to w in human readable
// SSA IR instruction format.
func (info *Info) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, f := range info.Funcs() {
		written, err := f.WriteTo(w)
		if err != nil {
			return n, err
		}
		n += written
	}
	return n, nil
}

// WriteFunc writes the Function found at path to w in human readable SSA IR
// instruction format.
func (info *Info) WriteFunc(w io.Writer, path string) (int64, error) {
	f, err := info.FindFunc(path)
	if err != nil {
		return 0, err
	}
	return f.WriteTo(w)
}
