// Package adapters provides the concrete agent implementations behind the
// adapter registry: an exec-based adapter driving a local automation CLI, an
// HTTP adapter for hosted agents, and an in-process echo adapter.
package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/log"
	"github.com/machovotrish/luma/pkg/utils"
)

// DefaultBrowserCommand is the automation CLI driven when no command is
// configured.
const DefaultBrowserCommand = "windows-use"

const finalAnswerMarker = "Final Answer:"

// BrowserAgent drives a local automation CLI as a subprocess. The process's
// combined output streams to the sink line by line while it runs; the text
// after the final answer marker becomes the result.
type BrowserAgent struct {
	agent.Base
	execPath string
}

// NewBrowserAgent constructs the exec-based adapter. The executable is
// resolved lazily so a missing CLI degrades to unavailable rather than
// failing construction.
func NewBrowserAgent(cfg agent.Config, sink io.Writer) (agent.Agent, error) {
	if cfg.Command == "" {
		cfg.Command = DefaultBrowserCommand
	}

	b := &BrowserAgent{Base: agent.Base{Cfg: cfg, Sink: sink}}

	if path, err := exec.LookPath(cfg.Command); err == nil {
		b.execPath = path
		log.WithFields(map[string]interface{}{
			"agent_name": b.Name(),
			"exec_path":  path,
		}).Info("browser agent initialized")
	} else {
		log.WithField("command", cfg.Command).WithError(err).Warn("automation CLI not found in PATH")
	}

	return b, nil
}

// IsAvailable reports whether the automation CLI is on the PATH.
func (b *BrowserAgent) IsAvailable() bool {
	if b.execPath != "" {
		return true
	}
	_, err := exec.LookPath(b.Cfg.Command)
	return err == nil
}

// HealthCheck verifies the CLI responds to a version query.
func (b *BrowserAgent) HealthCheck(ctx context.Context) error {
	path := b.execPath
	if path == "" {
		resolved, err := exec.LookPath(b.Cfg.Command)
		if err != nil {
			return fmt.Errorf("automation CLI not found: %w", err)
		}
		path = resolved
	}

	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		cmd = exec.CommandContext(ctx, path, "--help")
		if output, err = cmd.CombinedOutput(); err != nil {
			log.WithField("agent_name", b.Name()).WithError(err).Error("automation CLI not responding")
			return fmt.Errorf("automation CLI not responding to --version or --help: %w", err)
		}
	}

	log.WithFields(map[string]interface{}{
		"agent_name": b.Name(),
		"version":    utils.FirstLine(strings.TrimSpace(string(output))),
	}).Debug("browser agent health check passed")
	return nil
}

// Invoke runs one task to completion. The subprocess inherits ctx, so
// cancellation kills the process; the surrounding runner only cancels at
// checkpoints, preserving the cooperative model.
func (b *BrowserAgent) Invoke(ctx context.Context, query string) (agent.Result, error) {
	if b.execPath == "" {
		resolved, err := exec.LookPath(b.Cfg.Command)
		if err != nil {
			return agent.Result{}, fmt.Errorf("automation CLI not found: %w", err)
		}
		b.execPath = resolved
	}

	args := make([]string, 0, len(b.Cfg.Args)+2)
	args = append(args, b.Cfg.Args...)
	if b.Cfg.Model != "" {
		args = append(args, "--model", b.Cfg.Model)
	}

	cmd := exec.CommandContext(ctx, b.execPath, args...)
	cmd.Stdin = strings.NewReader(query)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return agent.Result{}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		log.WithField("agent_name", b.Name()).WithError(err).Error("failed to start automation CLI")
		return agent.Result{}, fmt.Errorf("failed to start %s: %w", b.Cfg.Command, err)
	}

	startTime := time.Now()
	var final strings.Builder
	capturing := false
	lineCount := 0

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(b.Sink, line)
		lineCount++

		if idx := strings.Index(line, finalAnswerMarker); idx >= 0 {
			capturing = true
			final.Reset()
			if rest := strings.TrimSpace(line[idx+len(finalAnswerMarker):]); rest != "" {
				final.WriteString(rest)
			}
			continue
		}
		if capturing && strings.TrimSpace(line) != "" {
			if final.Len() > 0 {
				final.WriteString("\n")
			}
			final.WriteString(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return agent.Result{}, fmt.Errorf("error reading output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			log.WithFields(map[string]interface{}{
				"agent_name": b.Name(),
				"exit_code":  exitErr.ExitCode(),
				"duration":   time.Since(startTime).String(),
			}).Error("automation CLI failed")
			return agent.Result{}, fmt.Errorf("%s failed (exit code %d)", b.Cfg.Command, exitErr.ExitCode())
		}
		return agent.Result{}, fmt.Errorf("%s failed: %w", b.Cfg.Command, err)
	}

	log.WithFields(map[string]interface{}{
		"agent_name": b.Name(),
		"duration":   time.Since(startTime).String(),
		"lines":      lineCount,
	}).Info("task run completed")

	return agent.Result{Content: final.String()}, nil
}

func init() {
	agent.Register("browser", NewBrowserAgent)
}
