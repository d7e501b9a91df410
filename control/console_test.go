package control_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/control"
	"github.com/momentics/ncrelay/fake"
	"github.com/momentics/ncrelay/registry"
	"github.com/momentics/ncrelay/transport"
)

type fixture struct {
	state   *control.State
	conns   *registry.Connections
	out     *bytes.Buffer
	sender  *fake.Sender
	metrics *control.MetricsRegistry
	prompts []string
	console *control.Console
}

func newFixture(t *testing.T, fds ...int) *fixture {
	t.Helper()
	f := &fixture{
		state:   control.NewState(api.DefaultParams()),
		conns:   registry.NewConnections(nil),
		out:     &bytes.Buffer{},
		sender:  fake.NewSender(),
		metrics: control.NewMetricsRegistry(),
	}
	for _, fd := range fds {
		_, err := f.conns.Register(fd, "")
		require.NoError(t, err)
	}
	f.console = control.NewConsole(f.state, f.conns,
		control.WithOutput(f.out),
		control.WithSender(f.sender),
		control.WithMetrics(f.metrics),
		control.WithCompletionSink(func(p string) { f.prompts = append(f.prompts, p) }),
	)
	return f
}

func TestConsoleModeSwitching(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, control.ModeControl, f.state.Mode())

	f.console.Execute("mode api")
	assert.Equal(t, control.ModeCompletion, f.state.Mode())
	f.console.Execute("mode notice")
	assert.Equal(t, control.ModeNotice, f.state.Mode())

	f.console.Execute("mode")
	assert.Equal(t, "mode: notice\n", f.out.String())

	f.console.Execute("mode bogus")
	assert.Equal(t, control.ModeNotice, f.state.Mode())

	f.console.Execute("mode ctrl")
	assert.Equal(t, control.ModeControl, f.state.Mode())
}

func TestConsoleExitOnlyInControlMode(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, control.ActionExit, f.console.Execute("exit"))

	f.console.Execute("mode api")
	assert.Equal(t, control.ActionNone, f.console.Execute("exit"))
	assert.Equal(t, []string{"exit"}, f.prompts)
}

func TestConsoleSetUpdatesAllParams(t *testing.T) {
	f := newFixture(t)
	f.console.Execute("set 100 0.5 0.9 0.1 0.1")
	assert.Equal(t, api.Params{
		MaxTokens:        100,
		Temperature:      0.5,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}, f.state.Params())
	assert.Equal(t, uint64(1), f.metrics.Get(control.MetricParamUpdates))
	assert.Contains(t, f.out.String(), "max_tokens=100")
}

func TestScanParamsIsPermissive(t *testing.T) {
	prev := api.DefaultParams()

	p := control.ScanParams(prev, []string{"200", "0.3"})
	assert.Equal(t, 200, p.MaxTokens)
	assert.Equal(t, 0.3, p.Temperature)
	assert.Equal(t, prev.TopP, p.TopP)

	p = control.ScanParams(prev, []string{"300", "oops", "0.1"})
	assert.Equal(t, 300, p.MaxTokens)
	assert.Equal(t, prev.Temperature, p.Temperature)
	assert.Equal(t, prev.TopP, p.TopP, "parsing stops at the first malformed field")

	p = control.ScanParams(prev, []string{"x"})
	assert.Equal(t, prev, p)

	p = control.ScanParams(prev, []string{"1", "2", "3", "4", "5", "6"})
	assert.Equal(t, api.Params{MaxTokens: 1, Temperature: 2, TopP: 3, FrequencyPenalty: 4, PresencePenalty: 5}, p)
}

func TestConsoleListInAcceptOrder(t *testing.T) {
	f := newFixture(t, 7, 5, 6)
	f.console.Execute("list")
	assert.Equal(t, "clients: [ 7 5 6 ]\n", f.out.String())

	f.out.Reset()
	require.NoError(t, f.conns.Unregister(5))
	f.console.Execute("list -v")
	assert.Contains(t, f.out.String(), "clients: 2\n")
	assert.Contains(t, f.out.String(), "fd=7")
	assert.NotContains(t, f.out.String(), "fd=5")
}

func TestConsoleNoticeBroadcastIsBestEffort(t *testing.T) {
	f := newFixture(t, 3, 4, 5)
	f.sender.Fail(4)
	f.console.Execute("mode notice")
	f.console.Execute("server going down")

	want := "\rnotice: server going down\n> "
	assert.Equal(t, []string{want}, f.sender.Sent(3))
	assert.Equal(t, []string{want}, f.sender.Sent(5))
	assert.Empty(t, f.sender.Sent(4))
	assert.Equal(t, uint64(2), f.metrics.Get(control.MetricNoticesSent))
	assert.Equal(t, uint64(1), f.metrics.Get(control.MetricNoticeFailures))
}

func TestConsoleFeedSplitsLines(t *testing.T) {
	f := newFixture(t)
	act := f.console.Feed([]byte("mode api\r\nfirst question\n\nsecond question\n"))
	assert.Equal(t, control.ActionNone, act)
	assert.Equal(t, []string{"first question", "second question"}, f.prompts)

	act = f.console.Feed([]byte("mode ctrl\nexit\nlist\n"))
	assert.Equal(t, control.ActionExit, act)
	assert.Empty(t, f.out.String(), "lines after exit are not executed")
}

func TestConsoleStatsAndUnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.metrics.Inc(control.MetricAccepted)
	f.metrics.RegisterProbe("connections.live", func() any { return f.conns.Len() })
	f.console.Execute("stats")
	assert.Equal(t, "connections.accepted 1\nconnections.live 0\n", f.out.String())

	f.out.Reset()
	assert.Equal(t, control.ActionNone, f.console.Execute("frobnicate"))
	assert.Contains(t, f.out.String(), "unknown command")
}

func TestConsoleWithoutSinkDropsCompletionLines(t *testing.T) {
	state := control.NewState(api.DefaultParams())
	c := control.NewConsole(state, registry.NewConnections(nil),
		control.WithSender(transport.SenderFunc(func(int, []byte) (int, error) { return 0, nil })))
	c.Execute("mode api")
	assert.Equal(t, control.ActionNone, c.Execute("hello"))
}

func TestStateOnChange(t *testing.T) {
	s := control.NewState(api.DefaultParams())
	var modes []control.Mode
	s.OnChange(func(m control.Mode, _ api.Params) { modes = append(modes, m) })
	s.SetMode(control.ModeNotice)
	s.SetParams(api.Params{MaxTokens: 1})
	assert.Equal(t, []control.Mode{control.ModeNotice, control.ModeNotice}, modes)
	assert.Equal(t, 1, s.Params().MaxTokens)

	_, err := control.ParseMode("nope")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, "api", control.ModeCompletion.String())
}
