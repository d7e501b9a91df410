// control/console.go
// Author: momentics <momentics@gmail.com>
//
// Line-oriented operator console for the control channel.

package control

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/registry"
	"github.com/momentics/ncrelay/transport"
)

// Action tells the loop what to do after a console line.
type Action int

const (
	ActionNone Action = iota
	ActionExit
)

// Console interprets control-channel lines according to the current Mode.
type Console struct {
	state   *State
	conns   *registry.Connections
	sender  transport.Sender
	submit  func(prompt string)
	out     io.Writer
	log     *zap.Logger
	metrics *MetricsRegistry
}

// ConsoleOption customizes a Console.
type ConsoleOption func(*Console)

// WithOutput sets where command results are printed.
func WithOutput(w io.Writer) ConsoleOption {
	return func(c *Console) { c.out = w }
}

// WithLogger sets the console logger.
func WithLogger(l *zap.Logger) ConsoleOption {
	return func(c *Console) { c.log = l }
}

// WithMetrics sets the registry used by "stats" and by notice accounting.
func WithMetrics(m *MetricsRegistry) ConsoleOption {
	return func(c *Console) { c.metrics = m }
}

// WithSender sets the writer used for notice broadcasts.
func WithSender(s transport.Sender) ConsoleOption {
	return func(c *Console) { c.sender = s }
}

// WithCompletionSink sets where completion-mode lines are submitted.
func WithCompletionSink(fn func(prompt string)) ConsoleOption {
	return func(c *Console) { c.submit = fn }
}

// NewConsole builds a console over the shared state and connection registry.
func NewConsole(state *State, conns *registry.Connections, opts ...ConsoleOption) *Console {
	c := &Console{
		state:   state,
		conns:   conns,
		sender:  transport.SenderFunc(transport.Send),
		out:     io.Discard,
		log:     zap.NewNop(),
		metrics: NewMetricsRegistry(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Feed executes every non-empty line of a control-channel burst in order and
// stops at the first line that asks the loop to exit.
func (c *Console) Feed(p []byte) Action {
	for _, raw := range bytes.Split(p, []byte{'\n'}) {
		line := strings.TrimRight(string(raw), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if c.Execute(line) == ActionExit {
			return ActionExit
		}
	}
	return ActionNone
}

// Execute interprets one line.
func (c *Console) Execute(line string) Action {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "mode" {
		c.modeCommand(fields[1:])
		return ActionNone
	}

	switch c.state.Mode() {
	case ModeControl:
		return c.controlCommand(fields)
	case ModeCompletion:
		c.complete(line)
	case ModeNotice:
		c.broadcast(line)
	default:
		c.log.Warn("wrong pattern", zap.Stringer("mode", c.state.Mode()))
	}
	return ActionNone
}

func (c *Console) modeCommand(args []string) {
	if len(args) == 0 {
		c.printf("mode: %s\n", c.state.Mode())
		return
	}
	m, err := ParseMode(args[0])
	if err != nil {
		c.log.Warn("unknown mode", zap.String("mode", args[0]))
		c.printf("unknown mode %q (ctrl|api|notice)\n", args[0])
		return
	}
	c.state.SetMode(m)
	c.log.Info("mode switched", zap.Stringer("mode", m))
}

func (c *Console) controlCommand(fields []string) Action {
	if len(fields) == 0 {
		return ActionNone
	}
	switch fields[0] {
	case "exit":
		c.log.Info("end of service")
		return ActionExit
	case "set":
		p := ScanParams(c.state.Params(), fields[1:])
		c.state.SetParams(p)
		c.metrics.Inc(MetricParamUpdates)
		c.log.Info("params updated", zap.Stringer("params", p))
		c.printf("%s\n", p)
	case "list":
		c.list(len(fields) > 1 && fields[1] == "-v")
	case "stats":
		for _, s := range c.metrics.Snapshot() {
			c.printf("%s %v\n", s.Name, s.Value)
		}
	default:
		c.log.Warn("unknown command", zap.String("command", fields[0]))
		c.printf("unknown command %q\n", fields[0])
	}
	return ActionNone
}

// ScanParams parses "<tokens> <t> <p> <f> <pr>" left to right on top of prev.
// Parsing stops at the first malformed field; fields not reached keep their
// previous values.
func ScanParams(prev api.Params, args []string) api.Params {
	p := prev
	floats := []*float64{&p.Temperature, &p.TopP, &p.FrequencyPenalty, &p.PresencePenalty}
	for i, arg := range args {
		if i == 0 {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return p
			}
			p.MaxTokens = v
			continue
		}
		if i > len(floats) {
			break
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return p
		}
		*floats[i-1] = v
	}
	return p
}

func (c *Console) list(verbose bool) {
	if !verbose {
		var b strings.Builder
		b.WriteString("clients: [ ")
		for _, fd := range c.conns.Descriptors() {
			b.WriteString(strconv.Itoa(fd))
			b.WriteByte(' ')
		}
		b.WriteString("]\n")
		c.printf("%s", b.String())
		return
	}
	c.printf("clients: %d\n", c.conns.Len())
	c.conns.ForEach(func(conn *registry.Connection) bool {
		c.printf("  fd=%d peer=%s state=%s buffered=%d since=%s\n",
			conn.FD, conn.Peer, conn.State, conn.Len(), conn.AcceptedAt.Format("15:04:05"))
		return true
	})
}

func (c *Console) complete(line string) {
	if c.submit == nil {
		c.log.Warn("completion unavailable, line dropped")
		return
	}
	c.submit(line)
}

// broadcast sends line to every connection. Failures are logged and skipped.
func (c *Console) broadcast(line string) {
	msg := []byte(api.NoticePrefix + line + "\n" + api.Prompt)
	c.conns.ForEach(func(conn *registry.Connection) bool {
		if _, err := c.sender.Send(conn.FD, msg); err != nil {
			c.metrics.Inc(MetricNoticeFailures)
			c.log.Warn("notice send failed", zap.Int("fd", conn.FD), zap.Error(err))
			return true
		}
		c.metrics.Inc(MetricNoticesSent)
		c.log.Debug("notice sent", zap.Int("fd", conn.FD), zap.String("text", line))
		return true
	})
}

func (c *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		c.log.Warn("console output failed", zap.Error(err))
	}
}
