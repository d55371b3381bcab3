package annotation

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var api = sonic.ConfigStd

func (a Text) MarshalJSON() ([]byte, error) {
	type record Text
	return api.Marshal(struct {
		Type Kind `json:"type"`
		record
	}{KindText, record(a)})
}

func (a Highlight) MarshalJSON() ([]byte, error) {
	type record Highlight
	return api.Marshal(struct {
		Type Kind `json:"type"`
		record
	}{KindHighlight, record(a)})
}

func (a Shape) MarshalJSON() ([]byte, error) {
	type record Shape
	return api.Marshal(struct {
		Type Kind `json:"type"`
		record
	}{KindShape, record(a)})
}

func (a Arrow) MarshalJSON() ([]byte, error) {
	type record Arrow
	return api.Marshal(struct {
		Type Kind `json:"type"`
		record
	}{KindArrow, record(a)})
}

func (a Drawing) MarshalJSON() ([]byte, error) {
	type record Drawing
	return api.Marshal(struct {
		Type Kind `json:"type"`
		record
	}{KindDrawing, record(a)})
}

// Decode parses one interchange record, dispatching on its "type" field
func Decode(data []byte) (Annotation, error) {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := api.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode annotation: %w", err)
	}

	var (
		out Annotation
		err error
	)
	switch probe.Type {
	case KindText:
		var v Text
		err = api.Unmarshal(data, &v)
		out = v
	case KindHighlight:
		var v Highlight
		err = api.Unmarshal(data, &v)
		out = v
	case KindShape:
		var v Shape
		err = api.Unmarshal(data, &v)
		out = v
	case KindArrow:
		var v Arrow
		err = api.Unmarshal(data, &v)
		out = v
	case KindDrawing:
		var v Drawing
		err = api.Unmarshal(data, &v)
		out = v
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalid)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, probe.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s annotation: %w", probe.Type, err)
	}
	return out, nil
}

// Codec converts annotation sets to and from the JSON interchange form
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a codec that reports rejected imports to logger
func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// ExportAll renders set as an indented JSON array
func (c *Codec) ExportAll(set []Annotation) (string, error) {
	if set == nil {
		set = []Annotation{}
	}
	data, err := api.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export annotations: %w", err)
	}
	return string(data), nil
}

// ImportAll parses an exported set. Malformed or invalid input is logged and
// yields an empty set; the import is all-or-nothing.
func (c *Codec) ImportAll(serialized string) []Annotation {
	var raws []json.RawMessage
	if err := api.UnmarshalFromString(serialized, &raws); err != nil {
		c.logger.Warn("Rejected annotation import", zap.Error(err))
		return []Annotation{}
	}

	out := make([]Annotation, 0, len(raws))
	for i, raw := range raws {
		a, err := Decode(raw)
		if err == nil {
			err = Validate(a)
		}
		if err != nil {
			c.logger.Warn("Rejected annotation import",
				zap.Int("index", i),
				zap.Error(err),
			)
			return []Annotation{}
		}
		out = append(out, a)
	}
	return out
}
