package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/hassan/vibelang/internal/config"
	"github.com/hassan/vibelang/internal/driver"
	"github.com/hassan/vibelang/internal/lexer"
)

const (
	historyFile = ".vibec_history"
	promptMain  = "vibe> "
	promptCont  = "....> "
	replBanner  = "VibeLang REPL. Enter declarations; Ctrl+D exits, :help lists commands."
	replHelp    = `Commands:
  :help     show this help
  :show     print the declarations accepted so far
  :c        print the C translation of the session
  :prompt CALL [=> REPLY]
            show the prompt CALL would send, e.g. :prompt getWeather("Oslo"),
            and how REPLY would be converted to the return type
  :reset    forget every declaration
  :quit     leave the REPL
`
)

// session holds the declarations accepted so far. Each new entry is
// compiled together with them and kept only if the whole unit compiles.
type session struct {
	comp *driver.Compiler
	src  strings.Builder
	out  string
}

// add compiles the session plus entry. On success the entry becomes part of
// the session.
func (s *session) add(entry string) (*driver.Report, error) {
	candidate := s.src.String() + entry + "\n"
	var buf strings.Builder
	rep, err := s.comp.CompileSource("<repl>", candidate, &buf)
	if err != nil {
		return rep, err
	}
	s.src.Reset()
	s.src.WriteString(candidate)
	s.out = buf.String()
	return rep, nil
}

func (s *session) reset() {
	s.src.Reset()
	s.out = ""
}

func runREPL(comp *driver.Compiler, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, replBanner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := &session{comp: comp}
	for {
		entry, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(stdout)
			break
		}
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))

		if strings.HasPrefix(entry, ":") {
			if quit := s.command(entry, stdout); quit {
				break
			}
			continue
		}

		rep, _ := s.add(entry)
		printReport(stdout, stderr, rep, true)
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return exitOK
}

// command runs a :command and reports whether the REPL should exit.
func (s *session) command(line string, stdout io.Writer) (quit bool) {
	switch strings.Fields(line)[0] {
	case ":quit", ":exit", ":q":
		return true
	case ":show":
		fmt.Fprint(stdout, s.src.String())
	case ":c":
		fmt.Fprint(stdout, s.out)
	case ":reset":
		s.reset()
		fmt.Fprintln(stdout, "session cleared")
	case ":prompt":
		s.preview(strings.TrimSpace(strings.TrimPrefix(line, ":prompt")), stdout)
	case ":help":
		fmt.Fprint(stdout, replHelp)
	default:
		fmt.Fprintf(stdout, "unknown command %s; try :help\n", line)
	}
	return false
}

// replySep separates the call of a :prompt command from a sample reply.
const replySep = "=>"

// preview prints what a call would send to the model and, when a sample
// reply follows replySep, what the function would return for it.
func (s *session) preview(arg string, stdout io.Writer) {
	call, reply, hasReply := splitReply(arg)
	if call == "" {
		fmt.Fprintln(stdout, "usage: :prompt CALL [=> REPLY]")
		return
	}
	p, err := s.comp.PreviewPrompt("<repl>", s.src.String(), call)
	if err != nil {
		fmt.Fprintf(stdout, "%s %v\n", red("✗"), err)
		return
	}

	fmt.Fprintf(stdout, "prompt:  %s\n", p.Text)
	if p.Meaning != "" {
		fmt.Fprintf(stdout, "meaning: %s\n", p.Meaning)
	}
	fmt.Fprintf(stdout, "model:   %s\n", describeParams(p.Params))
	if !hasReply {
		return
	}
	value, ok := p.Convert(reply)
	if !ok {
		fmt.Fprintf(stdout, "reply:   %q is discarded, %s returns nothing\n", reply, p.Function.Name)
		return
	}
	fmt.Fprintf(stdout, "reply:   %q -> %s = %s\n", reply, p.Accessor, value)
}

// splitReply splits "CALL => REPLY" at the first separator outside a
// string literal of the call.
func splitReply(arg string) (call, reply string, ok bool) {
	inString := false
	for i := 0; i < len(arg); i++ {
		switch {
		case inString && arg[i] == '\\':
			i++
		case arg[i] == '"':
			inString = !inString
		case !inString && strings.HasPrefix(arg[i:], replySep):
			return strings.TrimSpace(arg[:i]), strings.TrimSpace(arg[i+len(replySep):]), true
		}
	}
	return strings.TrimSpace(arg), "", false
}

// describeParams formats model parameters as "model (temperature T, max
// tokens N)", leaving out what is not set.
func describeParams(p config.Params) string {
	var extra []string
	if p.Temperature != nil {
		extra = append(extra, fmt.Sprintf("temperature %g", *p.Temperature))
	}
	if p.MaxTokens != nil {
		extra = append(extra, fmt.Sprintf("max tokens %d", *p.MaxTokens))
	}
	model := p.Model
	if model == "" {
		model = "default model"
	}
	if len(extra) == 0 {
		return model
	}
	return model + " (" + strings.Join(extra, ", ") + ")"
}

// readEntry reads lines until the braces and parentheses of the input
// balance. ok is false at end of input.
func readEntry(ln *liner.State) (entry string, ok bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if complete(b.String()) {
			return b.String(), true
		}
	}
}

// complete reports whether src has no open braces or parentheses. Input
// with a lexical error counts as complete so the error gets reported.
func complete(src string) bool {
	depth := 0
	l := lexer.New(src, "<repl>")
	for {
		tok, err := l.NextToken()
		if err != nil {
			return true
		}
		switch tok.Type {
		case lexer.TokenLeftBrace, lexer.TokenLeftParen:
			depth++
		case lexer.TokenRightBrace, lexer.TokenRightParen:
			depth--
		case lexer.TokenEOF:
			return depth <= 0
		}
	}
}
