package ident

import "strconv"

// Ref is a caller-supplied reference to a remote catalog resource.
// Construct one with ByID, BySlug or Raw; use FromAny at the JSON
// boundary where the shape of the input is not known upfront.
type Ref struct {
	kind kind
	id   int64
	slug string
	raw  map[string]any
}

type kind int

const (
	kindEmpty kind = iota
	kindID
	kindSlug
	kindRaw
)

func ByID(id int64) Ref {
	return Ref{kind: kindID, id: id}
}

func BySlug(slug string) Ref {
	return Ref{kind: kindSlug, slug: slug}
}

func Raw(fields map[string]any) Ref {
	return Ref{kind: kindRaw, raw: fields}
}

// FromAny classifies a loosely typed input. Numbers and numeric strings
// resolve by id, other strings by path segment. A list promotes its first
// element. Maps pass through Raw. Anything else resolves to the empty Ref.
func FromAny(input any) Ref {
	switch v := input.(type) {
	case nil:
		return Ref{}
	case int:
		return ByID(int64(v))
	case int64:
		return ByID(v)
	case float64:
		return ByID(int64(v))
	case string:
		if v == "" {
			return Ref{}
		}
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return ByID(id)
		}
		return BySlug(v)
	case []any:
		if len(v) == 0 {
			return Ref{}
		}
		return FromAny(v[0])
	case map[string]any:
		return Raw(v)
	default:
		return Ref{}
	}
}

// Payload builds the canonical lookup body for the remote api.
// A Raw ref that already carries an id or path_segment is returned
// unchanged, which makes resolution idempotent. A Raw ref with a
// positional first element ("0") has that element promoted and removed.
// Unresolvable shapes pass through untouched.
func (r Ref) Payload() map[string]any {
	switch r.kind {
	case kindID:
		return map[string]any{"id": r.id}
	case kindSlug:
		return map[string]any{"path_segment": r.slug}
	case kindRaw:
		return resolveRaw(r.raw)
	default:
		return map[string]any{}
	}
}

func resolveRaw(fields map[string]any) map[string]any {
	payload := make(map[string]any, len(fields))
	for key, value := range fields {
		payload[key] = value
	}

	if _, found := payload["id"]; found {
		return payload
	}
	if _, found := payload["path_segment"]; found {
		return payload
	}

	positional, found := payload["0"]
	if !found {
		return payload
	}

	delete(payload, "0")
	for key, value := range FromAny(positional).Payload() {
		payload[key] = value
	}

	return payload
}
