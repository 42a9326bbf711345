package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orvendai/resynth/pkg/resynth"
)

// ParamType is a small enum for parameter types used in metadata.
type ParamType string

const (
	ParamTypeInt     ParamType = "int"
	ParamTypeFloat   ParamType = "float"
	ParamTypeBool    ParamType = "bool"
	ParamTypeString  ParamType = "string"
	ParamTypePercent ParamType = "percent"
)

// ValidationRule is a machine-friendly representation of the constraints
// that a UI or client can use to validate input before invoking a command.
type ValidationRule struct {
	Type    ParamType `json:"type"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Hint    string    `json:"hint,omitempty"`
	Example string    `json:"example,omitempty"`
}

// parseBoolLikeToString accepts common truthy/falsy forms and returns "true"/"false" string.
func parseBoolLikeToString(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return "true", nil
	case "0", "f", "false", "n", "no", "off":
		return "false", nil
	default:
		return "", fmt.Errorf("invalid boolean: %q", s)
	}
}

// parsePercentValue parses a percent string like "3%" or a bare number and returns numeric string.
func parsePercentValue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		raw := strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("invalid percent value: %q", s)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("invalid percent/float value: %q", s)
	}
	return s, nil
}

func floatPtr(f float64) *float64 { return &f }

// ParamSpec documents one field of resynth.Params for the interactive
// parameter editor: its validation rule plus a human-readable blurb.
type ParamSpec struct {
	Name string
	Rule ValidationRule
	Help string
}

// ResynthParamSpecs describes every resynth.Params field the CLI lets
// a user tune interactively, in prompt order.
func ResynthParamSpecs() []ParamSpec {
	return []ParamSpec{
		{Name: "tries", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(1), Example: "200"},
			Help: "random candidates drawn per pixel per fill pass"},
		{Name: "comp_radius", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(1), Example: "3"},
			Help: "comparison-patch radius; patch side is 2*r+1"},
		{Name: "max_adjustment", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(0), Max: floatPtr(255), Example: "0"},
			Help: "per-channel color-adjustment clamp; 0 disables color adjustment"},
		{Name: "equal_adjustment", Rule: ValidationRule{Type: ParamTypeBool, Example: "false"},
			Help: "collapse the fitted color offset to one luminance-only shift"},
		{Name: "use_reference", Rule: ValidationRule{Type: ParamTypeBool, Example: "true"},
			Help: "draw donors from the reference image instead of the data image itself"},
		{Name: "inner_passes", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(0), Example: "20"},
			Help: "refinement sweeps run after each fill pass"},
		{Name: "outer_passes", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(0), Example: "4"},
			Help: "refinement sweeps run once every masked pixel is filled"},
		{Name: "important_count", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(1), Example: "6"},
			Help: "floor on how many boundary points one pick keeps"},
		{Name: "neighbours", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(0), Example: "30"},
			Help: "nearby already-filled pixels tried before random search"},
		{Name: "threads", Rule: ValidationRule{Type: ParamTypeInt, Min: floatPtr(1), Example: "1"},
			Help: "fill-pass worker count setting; the fill pass runs sequentially regardless"},
		{Name: "seed", Rule: ValidationRule{Type: ParamTypeInt, Example: "0"},
			Help: "RNG seed; 0 selects a fixed, reproducible seed"},
	}
}

// normalizeValue validates and canonicalizes a single raw input string
// against a ValidationRule, returning the string form to parse further.
func normalizeValue(raw string, vr ValidationRule) (string, error) {
	switch vr.Type {
	case ParamTypeInt:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", fmt.Errorf("expected integer, got %q", raw)
		}
		if vr.Min != nil && float64(v) < *vr.Min {
			return "", fmt.Errorf("%d < min %v", v, *vr.Min)
		}
		if vr.Max != nil && float64(v) > *vr.Max {
			return "", fmt.Errorf("%d > max %v", v, *vr.Max)
		}
		return strconv.FormatInt(v, 10), nil
	case ParamTypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", fmt.Errorf("expected float, got %q", raw)
		}
		if vr.Min != nil && f < *vr.Min {
			return "", fmt.Errorf("%v < min %v", f, *vr.Min)
		}
		if vr.Max != nil && f > *vr.Max {
			return "", fmt.Errorf("%v > max %v", f, *vr.Max)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case ParamTypePercent:
		return parsePercentValue(raw)
	case ParamTypeBool:
		return parseBoolLikeToString(raw)
	default:
		return raw, nil
	}
}

// GenerateParamHelp renders a tooltip block describing every tunable
// resynth.Params field, for the 'h' command and the parameter editor.
func GenerateParamHelp() string {
	var sb strings.Builder
	sb.WriteString("Resynthesis parameters:\n")
	for _, spec := range ResynthParamSpecs() {
		sb.WriteString(fmt.Sprintf("  %-18s (%s, default %s) — %s\n", spec.Name, spec.Rule.Type, spec.Rule.Example, spec.Help))
	}
	return strings.TrimSpace(sb.String())
}

// PromptParams walks ResynthParamSpecs interactively, using current as
// the baseline and PromptLine to fetch one line per field; an empty
// response keeps the current value. It returns the edited params.
func PromptParams(current resynth.Params) (resynth.Params, error) {
	p := current
	get := func(spec ParamSpec, cur string) (string, error) {
		raw, err := PromptLine(fmt.Sprintf("%s [%s]: ", spec.Name, cur))
		if err != nil {
			return "", err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return cur, nil
		}
		return normalizeValue(raw, spec.Rule)
	}

	for _, spec := range ResynthParamSpecs() {
		var cur string
		switch spec.Name {
		case "tries":
			cur = strconv.Itoa(p.Tries)
		case "comp_radius":
			cur = strconv.Itoa(p.CompRadius)
		case "max_adjustment":
			cur = strconv.Itoa(p.MaxAdjustment)
		case "equal_adjustment":
			cur = strconv.FormatBool(p.EqualAdjustment)
		case "use_reference":
			cur = strconv.FormatBool(p.UseReference)
		case "inner_passes":
			cur = strconv.Itoa(p.InnerPasses)
		case "outer_passes":
			cur = strconv.Itoa(p.OuterPasses)
		case "important_count":
			cur = strconv.Itoa(p.ImportantCount)
		case "neighbours":
			cur = strconv.Itoa(p.Neighbours)
		case "threads":
			cur = strconv.Itoa(p.Threads)
		case "seed":
			cur = strconv.FormatInt(p.Seed, 10)
		}

		val, err := get(spec, cur)
		if err != nil {
			return p, fmt.Errorf("reading %s: %w", spec.Name, err)
		}

		switch spec.Name {
		case "tries":
			p.Tries, _ = strconv.Atoi(val)
		case "comp_radius":
			p.CompRadius, _ = strconv.Atoi(val)
		case "max_adjustment":
			p.MaxAdjustment, _ = strconv.Atoi(val)
		case "equal_adjustment":
			p.EqualAdjustment, _ = strconv.ParseBool(val)
		case "use_reference":
			p.UseReference, _ = strconv.ParseBool(val)
		case "inner_passes":
			p.InnerPasses, _ = strconv.Atoi(val)
		case "outer_passes":
			p.OuterPasses, _ = strconv.Atoi(val)
		case "important_count":
			p.ImportantCount, _ = strconv.Atoi(val)
		case "neighbours":
			p.Neighbours, _ = strconv.Atoi(val)
		case "threads":
			p.Threads, _ = strconv.Atoi(val)
		case "seed":
			seed, _ := strconv.ParseInt(val, 10, 64)
			p.Seed = seed
		}
	}
	return p, nil
}
