package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/gophtext/internal/client/session"
	"github.com/iudanet/gophtext/internal/editor"
	"github.com/iudanet/gophtext/internal/verify"
)

const flushTimeout = 5 * time.Second

// Document открытый в REPL документ
type Document interface {
	Engine() editor.Engine
	Connected() bool
	Close() error
}

// flusher документ, умеющий дождаться подтверждения правок
type flusher interface {
	Flush(ctx context.Context) error
}

var errQuit = errors.New("quit")

// RunOT открывает документ через секвенсор и запускает REPL
func (c *Cli) RunOT(ctx context.Context, docID string) error {
	s, err := session.OpenOT(ctx, c.dialer, c.api, docID, c.clientID, c.logger)
	if err != nil {
		if session.IsUnavailable(err) {
			return fmt.Errorf("sequencer is unavailable, OT mode requires a connection: %w", err)
		}
		return fmt.Errorf("failed to open document: %w", err)
	}
	return c.edit(ctx, docID, s)
}

// RunCRDT открывает локальную реплику документа и запускает REPL.
// Работает и без сервера: правки синхронизируются при подключении.
func (c *Cli) RunCRDT(ctx context.Context, docID string) error {
	s, err := session.OpenCRDT(ctx, c.dialer, c.atoms, c.meta, docID, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	return c.edit(ctx, docID, s)
}

// edit ведет REPL до quit или конца ввода и закрывает документ
func (c *Cli) edit(ctx context.Context, docID string, doc Document) error {
	engine := doc.Engine()
	c.io.Printf("Document %s opened in %s mode. Type 'help' for commands.\n", docID, engine.Mode())

	err := c.repl(ctx, doc)

	if f, ok := doc.(flusher); ok {
		flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
		if ferr := f.Flush(flushCtx); ferr != nil {
			c.io.Println("Warning: some edits were not acknowledged by the server")
		}
		cancel()
	}
	if cerr := doc.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *Cli) repl(ctx context.Context, doc Document) error {
	engine := doc.Engine()
	prompt := string(engine.Mode()) + "> "

	for ctx.Err() == nil {
		line, err := c.io.ReadInput(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}

		err = c.execute(doc, engine, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			c.io.Printf("Error: %v\n", err)
		}
	}
	return nil
}

// execute выполняет одну команду REPL. Позиции задаются в символах видимого текста.
func (c *Cli) execute(doc Document, engine editor.Engine, line string) error {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)

	switch fields[0] {
	case "":
		return nil

	case "i", "insert":
		if len(fields) < 3 {
			return errors.New("usage: insert <pos> <text>")
		}
		pos, err := parsePosition(fields[1])
		if err != nil {
			return err
		}
		return insertText(engine, pos, fields[2])

	case "a", "append":
		if len(fields) < 2 {
			return errors.New("usage: append <text>")
		}
		return insertText(engine, len([]rune(engine.Text())), strings.Join(fields[1:], " "))

	case "d", "delete":
		if len(fields) < 2 {
			return errors.New("usage: delete <pos> [count]")
		}
		pos, err := parsePosition(fields[1])
		if err != nil {
			return err
		}
		count := 1
		if len(fields) == 3 {
			if count, err = strconv.Atoi(fields[2]); err != nil || count < 1 {
				return fmt.Errorf("invalid count %q", fields[2])
			}
		}
		for range count {
			if err := engine.Delete(pos); err != nil {
				return err
			}
		}
		return nil

	case "p", "print":
		c.io.Println(engine.Text())
		return nil

	case "s", "status":
		text := engine.Text()
		c.io.Printf("Mode:      %s\n", engine.Mode())
		c.io.Printf("Connected: %t\n", doc.Connected())
		c.io.Printf("Length:    %d\n", len([]rune(text)))
		c.io.Printf("Digest:    %s\n", verify.Digest(text))
		return nil

	case "h", "help":
		c.printHelp()
		return nil

	case "q", "quit", "exit":
		return errQuit
	}

	return fmt.Errorf("unknown command %q, type 'help'", fields[0])
}

func insertText(engine editor.Engine, pos int, text string) error {
	for i, ch := range []rune(text) {
		if err := engine.Insert(pos+i, ch); err != nil {
			return err
		}
	}
	return nil
}

func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil || pos < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return pos, nil
}

func (c *Cli) printHelp() {
	c.io.Println("Commands:")
	c.io.Println("  insert <pos> <text>   Insert text at position (alias: i)")
	c.io.Println("  append <text>         Append text to the end (alias: a)")
	c.io.Println("  delete <pos> [count]  Delete characters starting at position (alias: d)")
	c.io.Println("  print                 Show document text (alias: p)")
	c.io.Println("  status                Show connection state and digest (alias: s)")
	c.io.Println("  quit                  Close the document (alias: q)")
}
