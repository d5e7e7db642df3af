package component

import (
	"fmt"
	"io/fs"
	"maps"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// Attributes are the configuration values a component is constructed with.
type Attributes map[string]any

// Decode decodes the attributes into out, a pointer to a typed config struct.
// Fields are matched by their `attr` tag. Unknown keys are rejected and
// scalar values are converted weakly ("8080" decodes into an int field).
// fs.FileMode fields only accept octal permission strings such as "0644".
func (a Attributes) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "attr",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			fileModeHook(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(a)); err != nil {
		return fmt.Errorf("%w: %v", cerrors.ErrConfiguration, err)
	}
	return nil
}

// fileModeHook parses permission strings as octal. Integers are rejected:
// a literal 644 would otherwise become mode 0o1204.
func fileModeHook() mapstructure.DecodeHookFuncType {
	modeType := reflect.TypeFor[fs.FileMode]()
	return func(from, to reflect.Type, data any) (any, error) {
		if to != modeType {
			return data, nil
		}
		if from.Kind() != reflect.String {
			return nil, fmt.Errorf("invalid mode %v: want an octal string such as \"0644\"", data)
		}
		raw := strings.TrimSpace(reflect.ValueOf(data).String())
		n, err := strconv.ParseUint(strings.TrimPrefix(raw, "0o"), 8, 32)
		if err != nil || n > 0o777 {
			return nil, fmt.Errorf("invalid mode %q: want an octal string such as \"0644\"", raw)
		}
		return fs.FileMode(n), nil
	}
}

// Merge returns a copy of a with the keys of over applied on top.
func (a Attributes) Merge(over Attributes) Attributes {
	out := make(Attributes, len(a)+len(over))
	maps.Copy(out, a)
	maps.Copy(out, over)
	return out
}

// Type describes a constructible component type.
type Type struct {
	// Name is the registered type name, lower-case.
	Name string

	// Namevar is the required identifying attribute, or "" for none.
	Namevar string

	// Description is shown in component listings.
	Description string

	// New builds a component from its attributes.
	New func(attrs Attributes) (Component, error)
}

// Construct builds a component of type t.
//
// If t declares a namevar, attrs must hold exactly one non-empty value for
// it; otherwise construction fails with ErrConfiguration.
func (t Type) Construct(attrs Attributes) (Component, error) {
	var name string
	if t.Namevar != "" {
		v, err := namevarValue(t, attrs)
		if err != nil {
			return nil, err
		}
		name = v
		attrs = attrs.Merge(Attributes{t.Namevar: v})
	}

	c, err := t.New(attrs)
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", t.Name, err)
	}
	b := c.base()
	b.self = c
	if t.Namevar != "" {
		if err := b.SetNamevar(t.Namevar, name); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func namevarValue(t Type, attrs Attributes) (string, error) {
	raw, ok := attrs[t.Namevar]
	if !ok || raw == nil {
		return "", cerrors.NewConfigurationError(
			fmt.Sprintf("namevar %q required for component type %q", t.Namevar, t.Name),
			"", t.Namevar,
			fmt.Sprintf("set attribute %q", t.Namevar))
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() != 1 {
			return "", cerrors.NewConfigurationError(
				fmt.Sprintf("namevar %q of component type %q takes exactly one value, got %d", t.Namevar, t.Name, rv.Len()),
				"", t.Namevar, "")
		}
		raw = rv.Index(0).Interface()
	}

	value := strings.TrimSpace(fmt.Sprint(raw))
	if value == "" {
		return "", cerrors.NewConfigurationError(
			fmt.Sprintf("namevar %q required for component type %q", t.Namevar, t.Name),
			"", t.Namevar,
			fmt.Sprintf("set attribute %q", t.Namevar))
	}
	return value, nil
}
