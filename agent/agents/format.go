// Package agents implements the six retrieval agents. Each one pairs a cheap
// local relevance heuristic with a context fetch against one external
// collaborator; inference and embedding calls always go through the gateway.
package agents

import (
	"strconv"
	"time"
)

// fmtVND renders an amount with Vietnamese digit grouping, e.g. 15.000.000 VND.
func fmtVND(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + " VND"
}

func fmtDate(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}
