package term

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// EncodeHost renders a fully-evaluated host-representable value as JSON:
// host scalars map to JSON scalars, tuples to arrays, records to objects,
// enum values to a single-key {variant: payload} object. Anything stuck or
// non-host-representable (closures, types, operatives) is an error rather
// than a lossy placeholder.
func EncodeHost(v Flex) ([]byte, error) {
	g, err := toGo(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(g)
}

func toGo(v Flex) (any, error) {
	switch v := v.(type) {
	case *HostValue:
		switch v.Kind {
		case HostNumber:
			return v.Num, nil
		case HostString:
			return v.Str, nil
		default:
			return v.Bool, nil
		}
	case *TupleValue:
		return sliceToGo(v.Elements)
	case *HostTupleValue:
		return sliceToGo(v.Elements)
	case *RecordValue:
		out := make(map[string]any, len(v.Fields))
		for i, name := range v.FieldNames {
			g, err := toGo(v.Fields[i])
			if err != nil {
				return nil, err
			}
			out[name] = g
		}
		return out, nil
	case *EnumValue:
		payload, err := toGo(v.Payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{v.Variant: payload}, nil
	default:
		return nil, fmt.Errorf("term: %T has no host JSON representation", v)
	}
}

func sliceToGo(elems []Flex) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		g, err := toGo(e)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// DecodeHost parses JSON into the corresponding host value shape: scalars
// to HostValue, arrays to HostTupleValue, objects to RecordValue with
// fields in sorted-name order so decoding is deterministic.
func DecodeHost(data []byte) (Flex, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return fromGo(raw)
}

func fromGo(g any) (Flex, error) {
	switch g := g.(type) {
	case nil:
		return nil, fmt.Errorf("term: JSON null has no host value representation")
	case bool:
		return &HostValue{Kind: HostBool, Bool: g}, nil
	case json.Number:
		f, err := g.Float64()
		if err != nil {
			return nil, err
		}
		return &HostValue{Kind: HostNumber, Num: f}, nil
	case string:
		return &HostValue{Kind: HostString, Str: g}, nil
	case []any:
		elems := make([]Flex, len(g))
		for i, e := range g {
			v, err := fromGo(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &HostTupleValue{Elements: elems}, nil
	case map[string]any:
		names := sortedKeys(g)
		fields := make([]Flex, len(names))
		for i, n := range names {
			v, err := fromGo(g[n])
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		return &RecordValue{FieldNames: names, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("term: unsupported JSON value %T", g)
	}
}

func sortedKeys(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
