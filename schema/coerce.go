package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

func coerce(f Field, raw any) (any, error) {
	switch f.Type {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be string, got %T. did you forget putting quotes around the value?", raw)
		}
		return s, nil
	case Expression:
		switch v := raw.(type) {
		case Expr:
			return v, nil
		case string:
			return Expr(v), nil
		}
		return nil, fmt.Errorf("expected an expression, got %T", raw)
	case Duration:
		return ParseDuration(raw)
	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", raw)
		}
		return b, nil
	case Int:
		return toInt(raw)
	case Float:
		return toFloat(raw)
	default:
		return nil, fmt.Errorf("unsupported field type %s", f.Type)
	}
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return v.Int64()
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
