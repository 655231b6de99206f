package maven

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heringsfish/hf/internal/config"
	"github.com/heringsfish/hf/internal/errors"
	exectest "github.com/heringsfish/hf/internal/exec/testing"
	"github.com/heringsfish/hf/internal/logger"
	"github.com/heringsfish/hf/internal/output"
	"github.com/heringsfish/hf/internal/params"
	"github.com/heringsfish/hf/internal/plugin"
)

func noMavenOnPath(t *testing.T) {
	t.Helper()
	orig := findCommand
	findCommand = func(string) (string, bool) { return "", false }
	t.Cleanup(func() { findCommand = orig })
}

func newContext(t *testing.T, data map[string]interface{}, argv ...string) (*plugin.Context, *exectest.FakeRunner, *logger.BufferLogger) {
	t.Helper()
	runner := exectest.NewFakeRunner()
	log := logger.NewBufferLogger()
	return &plugin.Context{
		Config: config.New(data, config.Paths{ProjectHome: "/work/shop", UserHome: "/home/dev"}).WithGOOS("linux"),
		Params: params.Parse(argv),
		Runner: runner,
		Log:    log,
	}, runner, log
}

func TestLoadSettings(t *testing.T) {
	noMavenOnPath(t)

	tests := []struct {
		name    string
		data    map[string]interface{}
		want    *Settings
		wantErr []string
	}{
		{
			name: "defaults",
			data: map[string]interface{}{"command": map[string]interface{}{"maven": "/opt/maven/bin/mvn"}},
			want: &Settings{Command: "/opt/maven/bin/mvn", Project: "pom.xml"},
		},
		{
			name: "platform key and placeholders",
			data: map[string]interface{}{
				"command": map[string]interface{}{
					"maven":      "mvn",
					"maven.unix": "{user.home}/tools/mvn",
				},
				"maven": map[string]interface{}{
					"project": "{project.home}/pom.xml",
					"setting": "{user.home}/.m2/settings.xml",
				},
			},
			want: &Settings{
				Command:      "/home/dev/tools/mvn",
				Project:      "/work/shop/pom.xml",
				SettingsFile: "/home/dev/.m2/settings.xml",
			},
		},
		{
			name:    "no command",
			data:    map[string]interface{}{},
			wantErr: []string{`Setting "command.maven" is required!`},
		},
		{
			name: "empty project",
			data: map[string]interface{}{
				"command": map[string]interface{}{"maven": "mvn"},
				"maven":   map[string]interface{}{"project": ""},
			},
			wantErr: []string{`Setting "maven.project" is required`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewBufferLogger()
			cfg := config.New(tt.data, config.Paths{ProjectHome: "/work/shop", UserHome: "/home/dev"}).WithGOOS("linux")

			got, err := LoadSettings(cfg, log)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.HasTag(err, errors.TagMavenSettings))
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Contains(t, err.Error(), "Missing Maven settings")
				assert.Equal(t, tt.wantErr, log.Lines("error"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSettings_FallsBackToPath(t *testing.T) {
	orig := findCommand
	findCommand = func(name string) (string, bool) { return "/usr/bin/" + name, true }
	t.Cleanup(func() { findCommand = orig })

	got, err := LoadSettings(config.New(nil, config.Paths{}), logger.Noop())

	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/mvn", got.Command)
}

func TestGoalArgs(t *testing.T) {
	s := &Settings{Command: "mvn", Project: "pom.xml", SettingsFile: "/m2/settings.xml"}
	bare := &Settings{Command: "mvn", Project: "pom.xml"}

	tests := []struct {
		name     string
		build    func(*Settings, *params.Parameters) []string
		settings *Settings
		argv     []string
		want     []string
	}{
		{
			name:     "package",
			build:    BuildArgs,
			settings: bare,
			argv:     []string{"build"},
			want:     []string{"-f", "pom.xml", "package"},
		},
		{
			name:     "package with everything",
			build:    BuildArgs,
			settings: s,
			argv:     []string{"build", "-c", "skip", "-p", "prod,db"},
			want:     []string{"-f", "pom.xml", "-s", "/m2/settings.xml", "clean", "package", "-DskipTests=true", "-P", "prod,db"},
		},
		{
			name:     "long flags",
			build:    BuildArgs,
			settings: bare,
			argv:     []string{"build", "--clean", "--notest", "--profiles=ci"},
			want:     []string{"-f", "pom.xml", "clean", "package", "-DskipTests=true", "-P", "ci"},
		},
		{
			name:     "test goal ignores skip",
			build:    UnitTestArgs,
			settings: bare,
			argv:     []string{"test", "-c", "skip", "-p", "it"},
			want:     []string{"-f", "pom.xml", "clean", "test", "-P", "it"},
		},
		{
			name:     "clean goal",
			build:    CleanArgs,
			settings: s,
			argv:     []string{"clean", "-p", "ignored"},
			want:     []string{"-f", "pom.xml", "-s", "/m2/settings.xml", "clean"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.build(tt.settings, params.Parse(tt.argv)))
		})
	}
}

func TestArgsBuilder(t *testing.T) {
	a := NewArgs().Add("").AddIf(false, "x").AddIf(true, "y").Project("").Setting("").Profiles("")
	out := a.Build()
	assert.Equal(t, []string{"y"}, out)

	out[0] = "changed"
	assert.Equal(t, []string{"y"}, a.Build())
}

func TestGoals_RunThroughRunner(t *testing.T) {
	noMavenOnPath(t)
	data := map[string]interface{}{
		"command": map[string]interface{}{"maven": "/opt/maven/bin/mvn", "timeout": 5000},
		"env":     map[string]interface{}{"MAVEN_OPTS": "-Xmx1g"},
	}

	tests := []struct {
		name    string
		factory plugin.Factory
		argv    []string
		want    string
	}{
		{name: "build", factory: NewBuild, argv: []string{"build", "skip"}, want: "/opt/maven/bin/mvn -f pom.xml package -DskipTests=true"},
		{name: "test", factory: NewTest, argv: []string{"test"}, want: "/opt/maven/bin/mvn -f pom.xml test"},
		{name: "clean", factory: NewClean, argv: []string{"clean"}, want: "/opt/maven/bin/mvn -f pom.xml clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, runner, _ := newContext(t, data, tt.argv...)
			action, err := tt.factory(plugin.Descriptor{})
			require.NoError(t, err)

			res, err := action.Execute(context.Background(), rc)

			require.NoError(t, err)
			assert.Equal(t, 0, res.ExitCode)
			assert.Equal(t, []string{tt.want}, runner.Lines())

			cmd := runner.Calls[0]
			assert.Equal(t, "/work/shop", cmd.Dir)
			assert.Equal(t, map[string]string{"MAVEN_OPTS": "-Xmx1g"}, cmd.Env)
			assert.Equal(t, int64(5000), cmd.Timeout.Milliseconds())
			assert.IsType(t, output.MavenClassifier{}, cmd.Classifier)
		})
	}
}

func TestBuild_NonZeroExit(t *testing.T) {
	noMavenOnPath(t)
	rc, runner, _ := newContext(t, map[string]interface{}{"command": map[string]interface{}{"maven": "mvn"}}, "build")
	runner.On("package", exectest.Response{ExitCode: 1})

	res, err := Build(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, []string{"Finish with error (exit code 1)"}, res.Message)
}

func TestBuild_MissingSettingsRunsNothing(t *testing.T) {
	noMavenOnPath(t)
	rc, runner, _ := newContext(t, nil, "build")

	_, err := Build(context.Background(), rc)

	require.Error(t, err)
	assert.True(t, errors.HasTag(err, errors.TagMavenSettings))
	assert.Equal(t, 0, runner.CallCount())
}

func TestHandlers(t *testing.T) {
	h := Handlers()
	assert.Len(t, h, 3)
	for _, key := range []string{BuildHandler, TestHandler, CleanHandler} {
		assert.Contains(t, h, key)
	}
}
