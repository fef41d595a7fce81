// Package dooble contains the driver-facing entry points for compiling
// dooble source to its reference C backend and for running an interactive
// one-statement-at-a-time console.
package dooble

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/input"
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/parse"
	"github.com/dekarrin/dooble/internal/sema"
	"github.com/dekarrin/dooble/internal/target"
	"github.com/dekarrin/dooble/internal/typetree"
	"github.com/google/uuid"
)

// Unit is one compiled translation unit: its parsed AST, its global symbol
// table, and a stable identifier for attributing diagnostics across
// multiple units compiled into a shared Tree (spec.md §5's forward-looking
// concurrency note). The unit's diagnostics are recorded in the owning
// Pipeline's Sink, not on the Unit.
type Unit struct {
	ID      uuid.UUID
	Path    string
	Pool    *ast.Pool
	Root    ast.NodeRef
	Globals *sema.Globals
}

// Pipeline runs the dooble pipeline (lex -> parse -> sema -> backend) over
// one or more translation units sharing a single typetree.Tree, mirroring
// how a real multi-file compile shares one symbol space.
type Pipeline struct {
	Types *typetree.Tree
	Sink  *diag.Sink
	Units []*Unit
}

// NewPipeline prepares an empty Pipeline with a fresh type tree and
// diagnostic sink.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Types: typetree.NewTree(),
		Sink:  &diag.Sink{},
	}
}

// CompileSource lexes, parses, and runs the semantic pass over src,
// recording a new Unit (even on failure, so its partial AST can still be
// printed) and appending every diagnostic raised to p.Sink.
func (p *Pipeline) CompileSource(path string, src []byte) *Unit {
	lexer := lex.New(src, p.Sink)
	toks := lexer.Lex()

	pool, root := parse.Parse(toks, src, p.Types, p.Sink)

	u := &Unit{ID: uuid.New(), Path: path, Pool: pool, Root: root}

	globals := sema.NewGlobals(pool, p.Types, p.Sink)
	sema.Run(globals, root)
	u.Globals = globals

	p.Units = append(p.Units, u)
	return u
}

// CompileFile reads path from disk and runs CompileSource over its
// contents.
func (p *Pipeline) CompileFile(path string) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.CompileSource(path, src), nil
}

// Emit renders every compiled unit's declarations to the reference C
// backend (spec.md §6.3), concatenated in compile order. It returns an
// empty string if p.Sink has accumulated errors from any unit — the
// backend is not run over a program with unresolved diagnostics.
func (p *Pipeline) Emit() string {
	if p.Sink.HasErrors() {
		return ""
	}

	cb := target.NewCBackend(p.Types)
	b := target.NewBuilder()

	for _, u := range p.Units {
		emitUnitGlobals(b, cb, u)
	}

	body := b.GetGenerated()

	header := target.NewBuilder()
	cb.EmitAnonymousTypedefs(header)
	return header.GetGenerated() + body
}

func emitUnitGlobals(b *target.Builder, cb *target.CBackend, u *Unit) {
	for _, name := range u.Globals.Names() {
		info := u.Globals.Lookup(name)
		if info == nil {
			continue
		}
		ct := cb.TypeOf(info.Type)
		b.EmitIdentifier(name, false, false, ct)
		b.EmitStatement()
	}
}

// Console is an interactive, readline-backed front end that lexes and
// parses one statement at a time and prints its AST, following the same
// direct-vs-readline input toggle as the teacher's game console.
type Console struct {
	pipeline    *Pipeline
	out         *bufio.Writer
	forceDirect bool
	running     bool
	rlReader    interface {
		ReadCommand() (string, error)
		Close() error
	}
}

// NewConsole prepares a Console reading from inputStream and writing to
// outputStream. A nil inputStream defaults to os.Stdin, a nil outputStream
// to os.Stdout; readline-backed input is used only when both streams are
// the process's own stdio and forceDirectInput is false.
func NewConsole(inputStream io.Reader, outputStream io.Writer, forceDirectInput bool) (*Console, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	c := &Console{
		pipeline:    NewPipeline(),
		out:         bufio.NewWriter(outputStream),
		forceDirect: forceDirectInput,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout
	if useReadline {
		icr, err := input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
		c.rlReader = icr
	} else {
		c.rlReader = input.NewDirectReader(inputStream)
	}

	return c, nil
}

// Close cleans up readline resources associated with the Console.
func (c *Console) Close() error {
	if c.running {
		return fmt.Errorf("cannot close a running console")
	}
	return c.rlReader.Close()
}

// RunUntilQuit reads one statement per line until EOF or a line consisting
// only of "quit", lexing and parsing each line independently and printing
// its AST to the console's output stream.
func (c *Console) RunUntilQuit() error {
	intro := "dooble interactive console\n"
	if c.forceDirect {
		intro += "(direct input mode)\n"
	}
	intro += "===========================\n"
	if err := c.writeFlush(intro); err != nil {
		return err
	}

	c.running = true
	defer func() { c.running = false }()

	for c.running {
		line, err := c.rlReader.ReadCommand()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read statement: %w", err)
		}
		if line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		sink := &diag.Sink{}
		lexer := lex.New([]byte(line), sink)
		toks := lexer.Lex()
		pool, root := parse.Parse(toks, []byte(line), c.pipeline.Types, sink)

		for _, d := range sink.All() {
			if err := c.writeFlush(d.FullMessage() + "\n"); err != nil {
				return err
			}
		}
		if !sink.HasErrors() {
			if err := c.writeFlush(ast.Print(pool, root) + "\n"); err != nil {
				return err
			}
		}
	}

	return c.writeFlush("Goodbye\n")
}

func (c *Console) writeFlush(s string) error {
	if _, err := c.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return c.out.Flush()
}
