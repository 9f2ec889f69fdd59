package gateway

// Unwrap extracts the selected value from a response body shaped as
// {data: ...}. When the selector is absent the full body is returned if
// fallbackToFull is set; otherwise the second return value is false.
// Callers cannot distinguish "empty result" from "lookup failed" beyond
// that boolean; that ambiguity is part of the remote api's contract.
func Unwrap(body map[string]any, selector string, fallbackToFull bool) (any, bool) {
	if value, found := body[selector]; found {
		return value, true
	}

	if fallbackToFull {
		return body, true
	}

	return nil, false
}

// UnwrapPaged extracts a paged list response ({data, totalCount, pages})
// and re-keys the list under dataKey. An absent or empty list yields false.
func UnwrapPaged(body map[string]any, dataKey string) (map[string]any, bool) {
	data, found := body["data"]
	if !found {
		return nil, false
	}

	if items, ok := data.([]any); ok && len(items) == 0 {
		return nil, false
	}

	return map[string]any{
		dataKey:      data,
		"total":      body["totalCount"],
		"pagination": body["pages"],
	}, true
}
