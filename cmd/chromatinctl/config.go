package main

import (
	"encoding/json"
	"fmt"
	"os"

	"chromatin/internal/model"
	chromapi "chromatin/pkg/chromatin"
)

// Sweep configs are flat JSON documents sharing one key set across the
// sweep commands; each loader picks the keys its request understands.
// Explicitly set flags override loaded values.

func readConfigMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func loadOrDefaultCurveRequest(configPath string) (chromapi.CurveRequest, error) {
	if configPath == "" {
		return chromapi.CurveRequest{}, nil
	}
	raw, err := readConfigMap(configPath)
	if err != nil {
		return chromapi.CurveRequest{}, fmt.Errorf("load config: %w", err)
	}

	var req chromapi.CurveRequest
	if v, ok := asInt(raw["sites"]); ok {
		req.Sites = v
	}
	if v, ok := asString(raw["selector"]); ok {
		req.Selector = v
	}
	if v, ok := asBool(raw["cooperative"]); ok {
		req.Cooperative = v
	}
	if v, ok := asString(raw["regime"]); ok {
		req.Regime = v
	}
	if v, ok := asFloat64Slice(raw["feedbacks"]); ok {
		req.Feedbacks = v
	}
	if v, ok := asInt(raw["ticks"]); ok {
		req.Ticks = v
	}
	if v, ok := asInt(raw["equilibration"]); ok {
		req.Equilibration = v
	}
	if v, ok := asInt(raw["runs"]); ok {
		req.Runs = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

func loadOrDefaultCompareRequest(configPath string) (chromapi.CompareRequest, error) {
	if configPath == "" {
		return chromapi.CompareRequest{}, nil
	}
	raw, err := readConfigMap(configPath)
	if err != nil {
		return chromapi.CompareRequest{}, fmt.Errorf("load config: %w", err)
	}

	var req chromapi.CompareRequest
	if v, ok := asInt(raw["sites"]); ok {
		req.Sites = v
	}
	if v, ok := asVariants(raw["variants"]); ok {
		req.Variants = v
	}
	if v, ok := asFloat64Slice(raw["feedbacks"]); ok {
		req.Feedbacks = v
	}
	if v, ok := asInt(raw["ticks"]); ok {
		req.Ticks = v
	}
	if v, ok := asInt(raw["equilibration"]); ok {
		req.Equilibration = v
	}
	if v, ok := asInt(raw["runs"]); ok {
		req.Runs = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

func loadOrDefaultTraceRequest(configPath string) (chromapi.TraceRequest, error) {
	if configPath == "" {
		return chromapi.TraceRequest{}, nil
	}
	raw, err := readConfigMap(configPath)
	if err != nil {
		return chromapi.TraceRequest{}, fmt.Errorf("load config: %w", err)
	}

	var req chromapi.TraceRequest
	if v, ok := asInt(raw["sites"]); ok {
		req.Sites = v
	}
	if v, ok := asString(raw["selector"]); ok {
		req.Selector = v
	}
	if v, ok := asBool(raw["cooperative"]); ok {
		req.Cooperative = v
	}
	if v, ok := asString(raw["regime"]); ok {
		req.Regime = v
	}
	if v, ok := asFloat64Slice(raw["feedbacks"]); ok {
		req.Feedbacks = v
	}
	if v, ok := asInt(raw["ticks"]); ok {
		req.Ticks = v
	}
	if v, ok := asInt(raw["equilibration"]); ok {
		req.Equilibration = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asBool(raw["kymograph"]); ok {
		req.Kymograph = v
	}
	return req, nil
}

func loadOrDefaultDistributionRequest(configPath string) (chromapi.DistributionRequest, error) {
	if configPath == "" {
		return chromapi.DistributionRequest{}, nil
	}
	raw, err := readConfigMap(configPath)
	if err != nil {
		return chromapi.DistributionRequest{}, fmt.Errorf("load config: %w", err)
	}

	var req chromapi.DistributionRequest
	if v, ok := asInt(raw["sites"]); ok {
		req.Sites = v
	}
	if v, ok := asVariants(raw["variants"]); ok {
		req.Variants = v
	}
	if v, ok := asFloat64Slice(raw["feedbacks"]); ok {
		req.Feedbacks = v
	}
	if v, ok := asInt(raw["ticks"]); ok {
		req.Ticks = v
	}
	if v, ok := asInt(raw["equilibration"]); ok {
		req.Equilibration = v
	}
	if v, ok := asInt(raw["runs"]); ok {
		req.Runs = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

func overrideCurveRequest(req *chromapi.CurveRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "sites":
			req.Sites = v.(int)
		case "selector":
			req.Selector = v.(string)
		case "cooperative":
			req.Cooperative = v.(bool)
		case "regime":
			req.Regime = v.(string)
		case "feedbacks":
			req.Feedbacks = v.([]float64)
		case "ticks":
			req.Ticks = v.(int)
		case "equilibration":
			req.Equilibration = v.(int)
		case "runs":
			req.Runs = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		}
	}
}

func overrideCompareRequest(req *chromapi.CompareRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "sites":
			req.Sites = v.(int)
		case "variants":
			req.Variants = v.([]model.Variant)
		case "feedbacks":
			req.Feedbacks = v.([]float64)
		case "ticks":
			req.Ticks = v.(int)
		case "equilibration":
			req.Equilibration = v.(int)
		case "runs":
			req.Runs = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		}
	}
}

func overrideTraceRequest(req *chromapi.TraceRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "sites":
			req.Sites = v.(int)
		case "selector":
			req.Selector = v.(string)
		case "cooperative":
			req.Cooperative = v.(bool)
		case "regime":
			req.Regime = v.(string)
		case "feedbacks":
			req.Feedbacks = v.([]float64)
		case "ticks":
			req.Ticks = v.(int)
		case "equilibration":
			req.Equilibration = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "kymograph":
			req.Kymograph = v.(bool)
		}
	}
}

func overrideDistributionRequest(req *chromapi.DistributionRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "sites":
			req.Sites = v.(int)
		case "variants":
			req.Variants = v.([]model.Variant)
		case "feedbacks":
			req.Feedbacks = v.([]float64)
		case "ticks":
			req.Ticks = v.(int)
		case "equilibration":
			req.Equilibration = v.(int)
		case "runs":
			req.Runs = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asFloat64Slice(v any) ([]float64, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := asFloat64(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func asVariants(v any) ([]model.Variant, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]model.Variant, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		var variant model.Variant
		if s, ok := asString(m["name"]); ok {
			variant.Name = s
		}
		if s, ok := asString(m["selector"]); ok {
			variant.Selector = s
		}
		if b, ok := asBool(m["cooperative"]); ok {
			variant.Cooperative = b
		}
		if s, ok := asString(m["regime"]); ok {
			variant.Regime = s
		}
		out = append(out, variant)
	}
	return out, true
}
