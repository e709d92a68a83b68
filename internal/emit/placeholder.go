package emit

import (
	"coursesql/internal/domain/course"
	"fmt"
	"strconv"
	"strings"
)

const tokenPrefix = "TOPIC_ID_FOR_"

// Tokens assigns a unique placeholder token to every (chapter, topic) pair.
type Tokens struct {
	keys  []course.TopicKey
	byKey map[course.TopicKey]string
}

// NewTokens derives tokens for keys. Keys are processed in the order given,
// so collision suffixes are stable for a given key order.
func NewTokens(keys []course.TopicKey) *Tokens {
	t := &Tokens{byKey: make(map[course.TopicKey]string, len(keys))}
	used := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := t.byKey[k]; ok {
			continue
		}
		base := tokenPrefix + tokenPart(k.Chapter) + "__" + tokenPart(k.Topic)
		tok := base
		for n := 2; used[tok]; n++ {
			tok = base + "_" + strconv.Itoa(n)
		}
		used[tok] = true
		t.byKey[k] = tok
		t.keys = append(t.keys, k)
	}
	return t
}

func tokenPart(name string) string {
	name = strings.ReplaceAll(strings.ToUpper(name), "&", " AND ")

	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

func (t *Tokens) Token(k course.TopicKey) (string, bool) {
	tok, ok := t.byKey[k]
	return tok, ok
}

// Mapping lists "'chapter::topic' -> TOKEN" lines in key order.
func (t *Tokens) Mapping() []string {
	out := make([]string, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, fmt.Sprintf("%s -> %s", Quote(k.String()), t.byKey[k]))
	}
	return out
}

// MissingIDsError lists topics for which no id was supplied.
type MissingIDsError struct {
	Topics []course.TopicKey
}

func (e MissingIDsError) Error() string {
	names := make([]string, 0, len(e.Topics))
	for _, k := range e.Topics {
		names = append(names, k.String())
	}
	return fmt.Sprintf("no topic id for %d topic(s): %s", len(names), strings.Join(names, ", "))
}
