package jq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/itchyny/gojq"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	cmdcommon "github.com/meshguard/panelctl/internal/cmd/common"
	"github.com/meshguard/panelctl/internal/config"
	cerr "github.com/meshguard/panelctl/internal/err"
)

const (
	FlagName               = "jq"
	ColorFlagName          = "jq-color"
	RawOutputFlagName      = "jq-raw-output"
	RawOutputFlagShort     = "r"
	ColorEnabledConfigPath = "jq.color.enabled"
	RawOutputConfigPath    = "jq.raw-output"
	ChromaStyle            = "friendly"
)

var queryCache sync.Map

// Settings is the resolved jq behavior for one command invocation.
type Settings struct {
	Filter    string
	ColorMode cmdcommon.ColorMode
	RawOutput bool
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(
		FlagName,
		"",
		"Filter JSON responses using jq expressions (powered by gojq)",
	)

	jqColor := cmdpkg.NewEnum([]string{
		cmdcommon.ColorModeAuto.String(),
		cmdcommon.ColorModeAlways.String(),
		cmdcommon.ColorModeNever.String(),
	}, cmdcommon.DefaultColorMode)

	flags.Var(
		jqColor,
		ColorFlagName,
		fmt.Sprintf(`Controls colorized output for jq filter results.
- Config path: [ %s ]
- Allowed    : [ auto|always|never ]`, ColorEnabledConfigPath),
	)

	flags.BoolP(
		RawOutputFlagName,
		RawOutputFlagShort,
		false,
		fmt.Sprintf(`Output string jq results without JSON quotes (like jq -r).
- Config path: [ %s ]`, RawOutputConfigPath),
	)
}

// ResolveSettings reads the jq flags, falling back to config values for
// flags that were not set on the command line.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{ColorMode: cmdcommon.ColorModeAuto}

	if command == nil || command.Flags() == nil {
		return settings, nil
	}
	flags := command.Flags()
	if flags.Lookup(FlagName) == nil {
		return settings, nil
	}

	filter, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	filter = strings.TrimSpace(filter)
	if flags.Changed(FlagName) && filter == "" {
		filter = "."
	}
	settings.Filter = filter

	if cfg != nil {
		mode, err := cmdcommon.ColorModeStringToIota(
			strings.ToLower(strings.TrimSpace(cfg.GetString(ColorEnabledConfigPath))))
		if err != nil {
			return Settings{}, err
		}
		settings.ColorMode = mode
		settings.RawOutput = cfg.GetBool(RawOutputConfigPath)
	}
	if flags.Changed(ColorFlagName) {
		value, _ := flags.GetString(ColorFlagName)
		mode, err := cmdcommon.ColorModeStringToIota(value)
		if err != nil {
			return Settings{}, err
		}
		settings.ColorMode = mode
	}
	if flags.Changed(RawOutputFlagName) {
		settings.RawOutput, _ = flags.GetBool(RawOutputFlagName)
	}

	return settings, nil
}

func HasFilter(settings Settings) bool {
	return strings.TrimSpace(settings.Filter) != ""
}

func ValidateOutputFormat(outType cmdcommon.OutputFormat, settings Settings) error {
	if settings.RawOutput {
		if !HasFilter(settings) {
			return &cerr.ConfigurationError{
				Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName),
			}
		}
		if outType != cmdcommon.JSON {
			return &cerr.ConfigurationError{
				Err: fmt.Errorf("--%s is only supported with --output json when used with --%s",
					RawOutputFlagName, FlagName),
			}
		}
		return nil
	}

	if !HasFilter(settings) {
		return nil
	}
	if outType == cmdcommon.JSON || outType == cmdcommon.YAML {
		return nil
	}
	return &cerr.ConfigurationError{
		Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
	}
}

// ApplyToRaw runs the filter over raw. It returns either a transformed
// payload for the caller to print, or handled=true when it wrote the output
// itself (raw mode and colorized JSON).
func ApplyToRaw(raw any, outType cmdcommon.OutputFormat, settings Settings, out io.Writer) (any, bool, error) {
	if !HasFilter(settings) {
		return raw, false, nil
	}

	if err := ValidateOutputFormat(outType, settings); err != nil {
		return nil, false, err
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode output before applying jq filter: %w", err)
	}

	if settings.RawOutput {
		results, err := evaluateFilter(body, settings.Filter)
		if err != nil {
			return nil, false, err
		}
		return nil, true, writeRawResults(results, out)
	}

	filtered, err := ApplyFilter(body, settings.Filter)
	if err != nil {
		return nil, false, err
	}

	if outType == cmdcommon.JSON && ShouldUseColor(settings.ColorMode, out) {
		printable := colorize(filtered, indentJSON(filtered))
		if _, err := fmt.Fprintln(out, strings.TrimRight(printable, "\n")); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	var payload any
	if len(filtered) > 0 {
		if err := json.Unmarshal(filtered, &payload); err != nil {
			payload = strings.TrimRight(indentJSON(filtered), "\n")
		}
	}
	return payload, false, nil
}

// ApplyFilter evaluates the filter and re-encodes the result set: a single
// result stays unwrapped, multiple results become an array.
func ApplyFilter(body []byte, filter string) ([]byte, error) {
	results, err := evaluateFilter(body, filter)
	if err != nil {
		return nil, err
	}

	switch len(results) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(results[0])
	default:
		return json.Marshal(results)
	}
}

func evaluateFilter(body []byte, filter string) ([]any, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		filter = "."
	}
	if len(body) == 0 {
		return nil, errors.New("response body is empty, cannot apply jq filter")
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	query, err := compileCached(filter)
	if err != nil {
		return nil, err
	}

	iter := query.Run(payload)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func writeRawResults(results []any, out io.Writer) error {
	for _, result := range results {
		line, ok := result.(string)
		if !ok {
			encoded, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to encode filtered result: %w", err)
			}
			line = string(encoded)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func compileCached(filter string) (*gojq.Code, error) {
	if code, ok := queryCache.Load(filter); ok {
		cached, ok := code.(*gojq.Code)
		if !ok {
			return nil, fmt.Errorf("invalid cached jq code for filter %q", filter)
		}
		return cached, nil
	}

	parsed, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	queryCache.Store(filter, code)
	return code, nil
}

func indentJSON(body []byte) string {
	var js any
	if err := json.Unmarshal(body, &js); err != nil {
		return string(body)
	}
	formatted, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(formatted)
}

func ShouldUseColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	default:
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			return false
		}
		return isTerminal(out)
	}
}

func isTerminal(out io.Writer) bool {
	type fdWriter interface {
		Fd() uintptr
	}
	if fw, ok := out.(fdWriter); ok {
		return isatty.IsTerminal(fw.Fd()) || isatty.IsCygwinTerminal(fw.Fd())
	}
	return false
}

func colorize(raw []byte, formatted string) string {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return formatted
	}
	switch payload.(type) {
	case map[string]any, []any:
	default:
		return formatted
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Get("terminal")
	}
	if formatter == nil {
		return formatted
	}

	style := styles.Get(ChromaStyle)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return formatted
	}
	return buf.String()
}
