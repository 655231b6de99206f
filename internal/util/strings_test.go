package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		steps []string
		want  string
	}{
		{name: "no finished steps", steps: nil, want: "(none)"},
		{name: "empty list", steps: []string{}, want: "(none)"},
		{name: "one step", steps: []string{"build"}, want: "build"},
		{name: "whole pipeline", steps: []string{"build", "undeploy", "deploy"}, want: "build, undeploy, deploy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.steps))
		})
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{count: 0, want: "actions"},
		{count: 1, want: "action"},
		{count: 17, want: "actions"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Pluralize(tt.count, "action", "actions"))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "jdbc", 4},
		{"deploy", "deploy", 0},
		{"strat", "start", 2},
		{"deploy", "deploys", 1},
		{"undeploy", "deploy", 2},
		{"stop", "Stop", 1},
		{"create", "remove", 4},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	actions := []string{"build", "clean", "config", "create", "deploy", "help", "list", "start", "stop", "test", "undeploy"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "swapped letters", input: "strat", want: []string{"start"}},
		{name: "extra letter", input: "deploys", want: []string{"deploy"}},
		{name: "ignores case", input: "BUILD", want: []string{"build"}},
		{name: "nearest first", input: "stat", want: []string{"start", "stop"}},
		{name: "nothing close", input: "jdbc-pool", want: nil},
		{name: "empty input", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestSimilar(tt.input, actions, 3))
		})
	}
}

func TestSuggestSimilar_Limits(t *testing.T) {
	assert.Nil(t, SuggestSimilar("start", nil, 3))
	assert.Nil(t, SuggestSimilar("start", []string{"start"}, 0))
	assert.Equal(t, []string{"stop"}, SuggestSimilar("stop", []string{"stop", "start"}, 1))
}
