package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/okian/dugout/internal/adapters/http/api"
	service "github.com/okian/dugout/internal/app"
	"github.com/okian/dugout/internal/domain/engine"
	"github.com/okian/dugout/pkg/logger"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecommendOutput(t *testing.T) {
	args := []string{"recommend", "--log-level", "error",
		"--inning", "7", "--outs", "2", "--balls", "1", "--strikes", "1", "--first", "--third"}

	tests := []struct {
		name   string
		format string
		decode func([]byte, any) error
	}{
		{name: "yaml by default", format: "", decode: yaml.Unmarshal},
		{name: "json", format: "json", decode: json.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := args
			if tt.format != "" {
				a = append(append([]string{}, args...), "--output", tt.format)
			}
			out, err := execute(t, a...)
			require.NoError(t, err)

			var got planView
			require.NoError(t, tt.decode([]byte(out), &got))
			assert.Equal(t, engine.PitchHighFastball, got.PitchCall)
			assert.Equal(t, engine.CatcherThrowThrough, got.CatcherPlan)
			assert.Equal(t, engine.RunnerRundown, got.OffensiveSigns.Runner)
			assert.Equal(t, "Top of the 7 inning, count 1-1 with 2 out(s).", got.KeyPoints[0])
			assert.Empty(t, got.Trace)
		})
	}
}

func TestRecommendTrace(t *testing.T) {
	out, err := execute(t, "recommend", "--log-level", "error", "--balls", "3", "--strikes", "2", "--trace", "-o", "json")
	require.NoError(t, err)

	var got planView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{engine.RuleInitialize, engine.RuleCountPitch, engine.RuleCountHitter}, got.Trace)
}

func TestRecommendRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "outs out of range", args: []string{"--outs", "3"}, want: "outs"},
		{name: "unknown half", args: []string{"--half", "middle"}, want: "halfInning"},
		{name: "blank team", args: []string{"--offense", " "}, want: "offenseTeam"},
		{name: "unknown format", args: []string{"--output", "xml"}, want: "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"recommend", "--log-level", "error"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error()+out, tt.want)
		})
	}
}

func TestReplayCommand(t *testing.T) {
	svc := service.New(service.WithLogger(logger.Nop()))
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := execute(t, "replay", "--log-level", "error", "--url", srv.URL, "-n", "25", "-c", "3", "--seed", "9")
	require.NoError(t, err)
	assert.EqualValues(t, 25, svc.GetStats()["recommendations"])
}

func TestReplayCommandFailsWithoutServer(t *testing.T) {
	_, err := execute(t, "replay", "--log-level", "error", "--url", "http://127.0.0.1:1", "-n", "1", "--timeout", "200ms")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not healthy"))
}
