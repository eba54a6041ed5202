package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshguard/panelctl/internal/build"
	"github.com/meshguard/panelctl/internal/cmd/common"
	"github.com/meshguard/panelctl/internal/config"
	cerr "github.com/meshguard/panelctl/internal/err"
	"github.com/meshguard/panelctl/internal/iostreams"
	"github.com/meshguard/panelctl/internal/log"
	"github.com/meshguard/panelctl/internal/panel"
)

type Helper interface {
	GetCmd() *cobra.Command
	GetArgs() []string
	GetStreams() *iostreams.IOStreams
	GetConfig() (config.Hook, error)
	GetOutputFormat() (common.OutputFormat, error)
	// IsInteractive reports whether stdout is a terminal, which selects
	// the interactive table over static output.
	IsInteractive() bool
	GetLogger() (*slog.Logger, error)
	GetBuildInfo() (*build.Info, error)
	GetContext() context.Context
	GetPanelClient(cfg config.Hook, logger *slog.Logger) (*panel.Client, error)
}

type CommandHelper struct {
	// Cmd is a pointer to the command that is being executed
	Cmd *cobra.Command
	// Args are the arguments (not flags) passed to the command
	Args []string
}

func (r *CommandHelper) GetCmd() *cobra.Command {
	return r.Cmd
}

func (r *CommandHelper) GetArgs() []string {
	return r.Args
}

func (r *CommandHelper) GetBuildInfo() (*build.Info, error) {
	val := r.Cmd.Context().Value(build.InfoKey)
	if val == nil {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("no build info configured"),
		}
	}

	info, ok := val.(*build.Info)
	if !ok || info == nil {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("invalid build info configured"),
		}
	}

	return info, nil
}

func (r *CommandHelper) GetLogger() (*slog.Logger, error) {
	rv, ok := r.Cmd.Context().Value(log.LoggerKey).(*slog.Logger)
	if !ok || rv == nil {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("no logger configured"),
		}
	}
	return rv, nil
}

func (r *CommandHelper) GetStreams() *iostreams.IOStreams {
	return r.Cmd.Context().Value(iostreams.StreamsKey).(*iostreams.IOStreams)
}

func (r *CommandHelper) GetConfig() (config.Hook, error) {
	cfgVal := r.Cmd.Context().Value(config.ConfigKey)
	if cfgVal == nil {
		return nil, PrepareExecutionErrorMsg(r, "no config found in context")
	}
	return cfgVal.(config.Hook), nil
}

func (r *CommandHelper) GetOutputFormat() (common.OutputFormat, error) {
	c, e := r.GetConfig()
	if e != nil {
		return common.TEXT, e
	}
	s := c.GetString(common.OutputConfigPath)
	rv, e := common.OutputFormatStringToIota(s)
	if e != nil {
		return common.TEXT, e
	}
	return rv, nil
}

func (r *CommandHelper) IsInteractive() bool {
	return r.GetStreams().OutIsTerminal()
}

func (r *CommandHelper) GetContext() context.Context {
	return r.Cmd.Context()
}

// GetPanelClient builds the panel API client from the active profile's
// connection settings.
func (r *CommandHelper) GetPanelClient(cfg config.Hook, logger *slog.Logger) (*panel.Client, error) {
	baseURL := cfg.GetString(common.PanelURLConfigPath)
	if baseURL == "" {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("no panel base URL configured, set %q in the active profile",
				common.PanelURLConfigPath),
		}
	}
	token := cfg.GetString(common.PanelTokenConfigPath)
	timeout := time.Duration(cfg.GetIntOrElse(common.PanelTimeoutConfigPath, 60)) * time.Second

	httpClient := panel.NewLoggingHTTPClientWithClient(&http.Client{Timeout: timeout}, logger)
	client, err := panel.NewClient(baseURL, token, httpClient)
	if err != nil {
		return nil, PrepareExecutionErrorFromErr(r, err)
	}
	return client, nil
}

func BuildHelper(cmd *cobra.Command, args []string) Helper {
	return &CommandHelper{
		Cmd:  cmd,
		Args: args,
	}
}

// PrepareExecutionErrorWithHelper mirrors PrepareExecutionError but accepts a Helper.
// It ensures command usage/error output is silenced for runtime failures.
func PrepareExecutionErrorWithHelper(helper Helper, msg string, err error, attrs ...any) *cerr.ExecutionError {
	if helper == nil {
		return &cerr.ExecutionError{Msg: msg, Err: err, Attrs: attrs}
	}
	return PrepareExecutionError(msg, err, helper.GetCmd(), attrs...)
}

// PrepareExecutionErrorFromErr converts an arbitrary error into an ExecutionError while
// silencing usage/error output on the associated command. The friendly message defaults
// to the underlying error string when msg is empty.
func PrepareExecutionErrorFromErr(helper Helper, err error, attrs ...any) *cerr.ExecutionError {
	if err == nil {
		return nil
	}
	if len(attrs) == 0 {
		// Panel errors sometimes carry a JSON body; surface its fields as attrs.
		attrs = cerr.TryConvertErrorToAttrs(err)
	}
	return PrepareExecutionErrorWithHelper(helper, err.Error(), err, attrs...)
}

// PrepareExecutionErrorMsg builds an ExecutionError from a message when a backing error
// is not already available.
func PrepareExecutionErrorMsg(helper Helper, msg string, attrs ...any) *cerr.ExecutionError {
	if msg == "" {
		return PrepareExecutionErrorWithHelper(helper, msg, errors.New("an unknown error occurred"), attrs...)
	}
	return PrepareExecutionErrorWithHelper(helper, msg, errors.New(msg), attrs...)
}

// This will construct an execution error AND turn off error and usage output for the command
func PrepareExecutionError(msg string, err error, cmd *cobra.Command, attrs ...any) *cerr.ExecutionError {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	return &cerr.ExecutionError{
		Msg:   msg,
		Err:   err,
		Attrs: attrs,
	}
}
