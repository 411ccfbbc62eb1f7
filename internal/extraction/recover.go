package extraction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencedJSONRe matches a markdown code fence and captures its body.
// Models frequently wrap their JSON in ```json ... ``` despite being
// told not to.
var fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// RecoverFieldSet extracts a FieldSet from a free-text model reply.
// Strategies are tried in order: a fenced code block whose body is a
// JSON object, then the whole trimmed reply as a bare JSON object. If
// neither matches or parsing fails, the canonical empty set is returned
// together with an ErrMalformed-wrapped error. It never panics.
func RecoverFieldSet(reply string) (FieldSet, error) {
	candidate := ""
	if m := fencedJSONRe.FindStringSubmatch(reply); m != nil {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") {
			candidate = body
		}
	}
	if candidate == "" {
		trimmed := strings.TrimSpace(reply)
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			candidate = trimmed
		}
	}
	if candidate == "" {
		return Empty(), fmt.Errorf("%w: no JSON object in reply", ErrMalformed)
	}

	var fields FieldSet
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fields, nil
}
