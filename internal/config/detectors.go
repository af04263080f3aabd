// Package config loads the detector configuration file and the settings
// that drive a run.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/autotag/internal/detect"
)

//go:embed default_detectors.yaml
var defaultDetectors []byte

// ErrConfiguration matches every structural problem in a detector file.
var ErrConfiguration = errors.New("configuration error")

// Error is a configuration problem, optionally scoped to one detector.
type Error struct {
	Detector string
	Err      error
}

func (e *Error) Error() string {
	if e.Detector == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: detector %q: %v", e.Detector, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrConfiguration }

func configErr(detector, format string, args ...any) error {
	return &Error{Detector: detector, Err: errors.Errorf(format, args...)}
}

// DefaultDetectorsYAML returns the built-in detector file.
func DefaultDetectorsYAML() []byte {
	return append([]byte(nil), defaultDetectors...)
}

// DefaultDetectors returns the built-in detector records.
func DefaultDetectors() []detect.Spec {
	specs, err := ParseDetectors(defaultDetectors)
	if err != nil {
		panic(fmt.Sprintf("config: built-in detectors: %v", err))
	}
	return specs
}

// LoadDetectors reads and parses a detector file.
func LoadDetectors(path string) ([]detect.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading detector file %s", path)
	}
	return ParseDetectors(data)
}

// ParseDetectors decodes a detector file. Records keep the order in which
// they appear in the detectors mapping.
func ParseDetectors(data []byte) ([]detect.Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Err: errors.Wrap(err, "parsing yaml")}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, configErr("", "can't find key detectors")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, configErr("", "top level must be a mapping")
	}
	detectors := lookup(root, "detectors")
	if detectors == nil {
		return nil, configErr("", "can't find key detectors")
	}
	if detectors.Tag == "!!null" {
		return nil, nil
	}
	if detectors.Kind != yaml.MappingNode {
		return nil, configErr("", "detectors must be a mapping of name to detector")
	}

	specs := make([]detect.Spec, 0, len(detectors.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(detectors.Content); i += 2 {
		name := detectors.Content[i].Value
		if seen[name] {
			return nil, configErr(name, "duplicate detector name")
		}
		seen[name] = true

		spec, err := parseDetector(name, detectors.Content[i+1])
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseDetector(name string, node *yaml.Node) (detect.Spec, error) {
	spec := detect.Spec{Name: name}
	if node.Kind != yaml.MappingNode {
		return spec, configErr(name, "detector must be a mapping")
	}

	typ := lookup(node, "type")
	if typ == nil {
		return spec, configErr(name, "can't find type")
	}
	if !detect.Known(typ.Value) {
		return spec, &Error{Detector: name, Err: errors.Wrapf(detect.ErrUnknownKind, "%q", typ.Value)}
	}
	spec.Kind = typ.Value

	change := lookup(node, "produce_type_change")
	if change == nil {
		return spec, configErr(name, "can't find produce_type_change")
	}
	spec.ChangeKind = change.Value

	params := lookup(node, "params")
	if params == nil || params.Tag == "!!null" {
		return spec, nil
	}
	if params.Kind != yaml.MappingNode {
		return spec, configErr(name, "params must be a mapping")
	}
	for i := 0; i+1 < len(params.Content); i += 2 {
		key, val := params.Content[i].Value, params.Content[i+1]
		switch key {
		case "pattern":
			if val.Kind != yaml.ScalarNode || val.Tag != "!!str" {
				return spec, invalidParam(name, key, val, "a string")
			}
			spec.Pattern = val.Value
		case "case_sensitive", "strip":
			var b bool
			if val.Kind != yaml.ScalarNode || val.Tag != "!!bool" || val.Decode(&b) != nil {
				return spec, invalidParam(name, key, val, "a boolean")
			}
			if key == "strip" {
				spec.Strip = &b
			} else {
				spec.CaseSensitive = &b
			}
		default:
			return spec, &detect.ValidationError{Detector: name, Err: errors.Errorf("unknown parameter %q", key)}
		}
	}
	return spec, nil
}

func invalidParam(detector, key string, val *yaml.Node, want string) error {
	return &detect.ValidationError{
		Detector: detector,
		Err:      errors.Errorf("%s: %q is not valid, it must be %s", key, val.Value, want),
	}
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// BuildDetectors parses data and builds the detector set.
func BuildDetectors(data []byte, log logrus.FieldLogger) (*detect.Set, error) {
	specs, err := ParseDetectors(data)
	if err != nil {
		return nil, err
	}
	for _, s := range specs {
		log.WithFields(logrus.Fields{"detector": s.Name, "type": s.Kind}).Debugf("prepared detector -> %s", s.ChangeKind)
	}
	return detect.Build(specs, detect.WithLogger(log))
}

// MarshalDetectors encodes specs in the detector file format using the
// canonical kind names.
func MarshalDetectors(specs []detect.Spec) ([]byte, error) {
	detectors := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range specs {
		kind := s.Kind
		if d, err := detect.New(s); err == nil {
			kind = d.Kind()
		}
		params := &yaml.Node{Kind: yaml.MappingNode}
		params.Content = append(params.Content, scalar("pattern"), scalar(s.Pattern))
		if s.CaseSensitive != nil {
			params.Content = append(params.Content, scalar("case_sensitive"), boolean(*s.CaseSensitive))
		}
		if s.Strip != nil {
			params.Content = append(params.Content, scalar("strip"), boolean(*s.Strip))
		}

		body := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			scalar("type"), scalar(kind),
			scalar("produce_type_change"), scalar(s.ChangeKind),
			scalar("params"), params,
		}}
		detectors.Content = append(detectors.Content, scalar(s.Name), body)
	}
	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("detectors"), detectors}}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, errors.Wrap(err, "encoding detectors")
	}
	return out, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func boolean(b bool) *yaml.Node {
	v := "false"
	if b {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}
