package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// UCI drives an external engine such as Stockfish over its stdin/stdout protocol
type UCI struct {
	cfg   Config
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	mu    sync.Mutex
	level int
}

// NewUCI starts the engine binary and completes the uci/isready handshake
func NewUCI(ctx context.Context, cfg Config) (*UCI, error) {
	cfg = cfg.WithDefaults()
	cmd := exec.Command(cfg.Path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "engine stdin")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "engine stdout")
	}

	if err = cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start engine %s", cfg.Path)
	}

	u := &UCI{
		cfg:   cfg,
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 64),
		level: -1,
	}

	// Single reader; the channel closes when the engine exits
	go func() {
		defer close(u.lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			u.lines <- scanner.Text()
		}
	}()

	hctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := u.initialize(hctx); err != nil {
		u.Close()
		return nil, err
	}

	return u, nil
}

func (u *UCI) initialize(ctx context.Context) error {
	if err := u.send("uci"); err != nil {
		return err
	}
	if _, err := u.waitFor(ctx, func(line string) bool { return line == "uciok" }); err != nil {
		return errors.WithMessage(err, "waiting for uciok")
	}
	return u.ready(ctx)
}

func (u *UCI) ready(ctx context.Context) error {
	if err := u.send("isready"); err != nil {
		return err
	}
	if _, err := u.waitFor(ctx, func(line string) bool { return line == "readyok" }); err != nil {
		return errors.WithMessage(err, "waiting for readyok")
	}
	return nil
}

func (u *UCI) send(cmd string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, err := fmt.Fprintln(u.stdin, cmd); err != nil {
		return errors.Wrapf(err, "send %q", cmd)
	}
	return nil
}

// waitFor consumes lines until match returns true, passing every line to match
func (u *UCI) waitFor(ctx context.Context, match func(string) bool) (string, error) {
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return "", errors.New("engine closed unexpectedly")
			}
			if match(line) {
				return line, nil
			}
		case <-ctx.Done():
			return "", errors.Wrap(ctx.Err(), "engine timeout")
		}
	}
}

// setSkillLevel sets the Stockfish skill level (0-20) when it changed
func (u *UCI) setSkillLevel(level int) error {
	if level == u.level {
		return nil
	}
	if err := u.send(fmt.Sprintf("setoption name Skill Level value %d", level)); err != nil {
		return err
	}
	u.level = level
	return nil
}

// Propose searches the position for the configured move time
func (u *UCI) Propose(ctx context.Context, req Request) (Proposal, error) {
	if strings.ContainsAny(req.FEN, "\r\n") {
		return Proposal{}, errors.New("refusing FEN with line breaks")
	}

	level, moveTime := u.cfg.resolve(req)
	if err := u.setSkillLevel(level); err != nil {
		return Proposal{}, err
	}
	if err := u.send("position fen " + req.FEN); err != nil {
		return Proposal{}, err
	}
	if err := u.send(fmt.Sprintf("go movetime %d", moveTime.Milliseconds())); err != nil {
		return Proposal{}, err
	}

	// Twice the search time plus slack before giving up on bestmove
	sctx, cancel := context.WithTimeout(ctx, 2*moveTime+time.Second)
	defer cancel()

	var result Proposal
	line, err := u.waitFor(sctx, func(line string) bool {
		if strings.HasPrefix(line, "info ") {
			parseInfo(line, &result)
		}
		return strings.HasPrefix(line, "bestmove")
	})
	if err != nil {
		u.abort()
		return Proposal{}, errors.WithMessage(err, "waiting for bestmove")
	}

	if parts := strings.Fields(line); len(parts) >= 2 && parts[1] != "(none)" {
		result.Move = parts[1]
	}
	return result, nil
}

// abort stops a running search and discards its late bestmove
func (u *UCI) abort() {
	if u.send("stop") != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u.waitFor(ctx, func(line string) bool { return strings.HasPrefix(line, "bestmove") })
}

// parseInfo folds depth and score fields of an info line into p
func parseInfo(line string, p *Proposal) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			fmt.Sscanf(fields[i+1], "%d", &p.Depth)
		case "cp":
			fmt.Sscanf(fields[i+1], "%d", &p.Score)
			p.IsMate = false
			p.MateIn = 0
		case "mate":
			fmt.Sscanf(fields[i+1], "%d", &p.MateIn)
			p.IsMate = true
			// Mate scores expressed as centipawns
			if p.MateIn > 0 {
				p.Score = 100000 - p.MateIn
			} else {
				p.Score = -100000 - p.MateIn
			}
		}
	}
}

func (u *UCI) Close() error {
	u.send("quit")
	u.stdin.Close()

	// Unblock the reader so the pipe can be closed
	go func() {
		for range u.lines {
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(time.Second):
		return u.cmd.Process.Kill()
	}
}
