package iostreams

import (
	"bytes"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var osStreams *IOStreams

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Empty type to represent the _type_ IOStreams. Genesis is to support a key in a Context
type Key struct{}

// StreamsKey is a global instance of the Key type
var StreamsKey = Key{}

type fdProvider interface {
	Fd() uintptr
}

// Get a singleton instance of the OS IOStreams
func GetOSIOStreams() *IOStreams {
	if osStreams == nil {
		osStreams = &IOStreams{
			In:     os.Stdin,
			Out:    os.Stdout,
			ErrOut: os.Stderr,
		}
	}
	return osStreams
}

// OutIsTerminal reports whether Out is attached to an interactive terminal.
func (s *IOStreams) OutIsTerminal() bool {
	fd, ok := outFD(s.Out)
	if !ok {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalSize returns the width and height of the terminal behind Out, or
// the provided defaults when Out is not a terminal.
func (s *IOStreams) TerminalSize(defaultWidth, defaultHeight int) (int, int) {
	fd, ok := outFD(s.Out)
	if !ok {
		return defaultWidth, defaultHeight
	}
	w, h, err := term.GetSize(int(fd))
	if err != nil {
		return defaultWidth, defaultHeight
	}
	return w, h
}

func outFD(w io.Writer) (uintptr, bool) {
	fp, ok := w.(fdProvider)
	if !ok {
		return 0, false
	}
	fd := fp.Fd()
	if fd == ^uintptr(0) {
		return 0, false
	}
	return fd, true
}

func NewTestIOStreams() (*IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
	}, in, out, errOut
}
