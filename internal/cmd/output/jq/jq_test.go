package jq

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	cmdcommon "github.com/meshguard/panelctl/internal/cmd/common"
)

type stubConfig struct {
	values     map[string]string
	boolValues map[string]bool
}

func (s stubConfig) Save() error                           { return nil }
func (s stubConfig) GetString(key string) string           { return s.values[key] }
func (s stubConfig) GetBool(key string) bool               { return s.boolValues[key] }
func (s stubConfig) GetInt(string) int                     { return 0 }
func (s stubConfig) GetIntOrElse(_ string, orElse int) int { return orElse }
func (s stubConfig) GetStringSlice(string) []string        { return nil }
func (s stubConfig) SetString(string, string)              {}
func (s stubConfig) Set(string, any)                       {}
func (s stubConfig) Get(string) any                        { return nil }
func (s stubConfig) BindFlag(string, *pflag.Flag) error    { return nil }
func (s stubConfig) GetProfile() string                    { return "default" }
func (s stubConfig) GetPath() string                       { return "" }

func TestResolveSettingsDefaults(t *testing.T) {
	command := &cobra.Command{Use: "test"}
	AddFlags(command.Flags())

	settings, err := ResolveSettings(command, nil)
	require.NoError(t, err)
	require.Equal(t, "", settings.Filter)
	require.Equal(t, cmdcommon.ColorModeAuto, settings.ColorMode)
	require.False(t, settings.RawOutput)
}

func TestResolveSettingsEmptyFilterDefaultsToIdentity(t *testing.T) {
	command := &cobra.Command{Use: "test"}
	AddFlags(command.Flags())
	require.NoError(t, command.Flags().Set(FlagName, ""))

	settings, err := ResolveSettings(command, nil)
	require.NoError(t, err)
	require.Equal(t, ".", settings.Filter)
}

func TestResolveSettingsReadsRawOutputShortFlag(t *testing.T) {
	command := &cobra.Command{Use: "test"}
	AddFlags(command.Flags())
	require.NoError(t, command.Flags().Parse([]string{"-r"}))

	settings, err := ResolveSettings(command, nil)
	require.NoError(t, err)
	require.True(t, settings.RawOutput)
}

func TestResolveSettingsReadsColorConfig(t *testing.T) {
	command := &cobra.Command{Use: "test"}
	AddFlags(command.Flags())

	cfg := stubConfig{
		values: map[string]string{
			ColorEnabledConfigPath: "always",
		},
		boolValues: map[string]bool{
			RawOutputConfigPath: true,
		},
	}

	settings, err := ResolveSettings(command, cfg)
	require.NoError(t, err)
	require.Equal(t, cmdcommon.ColorModeAlways, settings.ColorMode)
	require.True(t, settings.RawOutput)
}

func TestValidateOutputFormatRawRequiresFilterAndJSON(t *testing.T) {
	err := ValidateOutputFormat(cmdcommon.JSON, Settings{RawOutput: true})
	require.Error(t, err)

	err = ValidateOutputFormat(cmdcommon.TEXT, Settings{Filter: ".", RawOutput: true})
	require.Error(t, err)

	err = ValidateOutputFormat(cmdcommon.JSON, Settings{Filter: ".", RawOutput: true})
	require.NoError(t, err)
}

func TestValidateOutputFormatFilterNeedsStructuredOutput(t *testing.T) {
	err := ValidateOutputFormat(cmdcommon.TEXT, Settings{Filter: ".[].name"})
	require.Error(t, err)

	require.NoError(t, ValidateOutputFormat(cmdcommon.JSON, Settings{Filter: ".[].name"}))
	require.NoError(t, ValidateOutputFormat(cmdcommon.YAML, Settings{Filter: ".[].name"}))
}

func TestApplyFilterSingleResultStaysUnwrapped(t *testing.T) {
	out, err := ApplyFilter([]byte(`{"users":[{"name":"alice"}]}`), ".users[0].name")
	require.NoError(t, err)
	require.JSONEq(t, `"alice"`, string(out))
}

func TestApplyFilterMultipleResultsBecomeArray(t *testing.T) {
	out, err := ApplyFilter([]byte(`{"users":[{"name":"alice"},{"name":"bob"}]}`), ".users[].name")
	require.NoError(t, err)
	require.JSONEq(t, `["alice","bob"]`, string(out))
}

func TestApplyToRawRawOutputWritesLines(t *testing.T) {
	var buf bytes.Buffer
	settings := Settings{Filter: ".users[].name", RawOutput: true}

	payload := map[string]any{"users": []map[string]any{{"name": "alice"}, {"name": "bob"}}}
	out, handled, err := ApplyToRaw(payload, cmdcommon.JSON, settings, &buf)
	require.NoError(t, err)
	require.True(t, handled)
	require.Nil(t, out)
	require.Equal(t, "alice\nbob\n", buf.String())
}

func TestApplyToRawWithoutFilterPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]any{"total": 3}

	out, handled, err := ApplyToRaw(payload, cmdcommon.JSON, Settings{}, &buf)
	require.NoError(t, err)
	require.False(t, handled)
	require.Equal(t, payload, out)
	require.Empty(t, buf.String())
}

func TestApplyFilterRejectsInvalidExpression(t *testing.T) {
	_, err := ApplyFilter([]byte(`{}`), ".users[")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid jq expression")
}
