package validation

import "strings"

// ClientQuestionIDPrefix is the prefix the form editor puts on generated
// question ids (q_<unix-millis>). It is not part of the canonical id.
const ClientQuestionIDPrefix = "q_"

// NormalizeQuestionID maps a client-supplied question id to its canonical
// form by trimming whitespace and every leading client prefix. It is
// idempotent: NormalizeQuestionID(NormalizeQuestionID(x)) == NormalizeQuestionID(x).
func NormalizeQuestionID(raw string) string {
	id := raw
	for {
		id = strings.TrimSpace(id)
		if !strings.HasPrefix(id, ClientQuestionIDPrefix) {
			return id
		}
		id = id[len(ClientQuestionIDPrefix):]
	}
}
