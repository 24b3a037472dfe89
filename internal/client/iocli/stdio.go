package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio читает строки из in и пишет в out. Приглашение печатается
// только если in терминал, чтобы при вводе из файла вывод оставался чистым.
type Stdio struct {
	in       *bufio.Reader
	out      io.Writer
	terminal bool
}

// NewStdio возвращает IO поверх stdin/stdout процесса
func NewStdio() IO {
	return &Stdio{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		terminal: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// NewStream возвращает IO поверх произвольных потоков (без приглашений)
func NewStream(in io.Reader, out io.Writer) IO {
	return &Stdio{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// ReadInput читает строку без завершающего перевода строки.
// Последняя строка без перевода возвращается вместе с nil, следующий вызов вернет io.EOF.
func (s *Stdio) ReadInput(prompt string) (string, error) {
	if s.terminal {
		s.Printf("%s", prompt)
	}

	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimRight(input, "\r\n"), nil
}
