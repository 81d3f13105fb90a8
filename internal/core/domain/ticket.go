package domain

import "strings"

// Ticket is a structured helpdesk report from a store.
type Ticket struct {
	Store     string
	Terminal  string
	Area      string
	Symptom   string
	Error     string
	Restarted string
	Time      string
	Impact    string
	Extra     string
}

// Question flattens the ticket into a single retrieval query.
// Blank fields are omitted; an all-blank ticket yields "".
func (t Ticket) Question() string {
	fields := []struct {
		key, value string
	}{
		{"store", t.Store},
		{"terminal", t.Terminal},
		{"area", t.Area},
		{"symptom", t.Symptom},
		{"error", t.Error},
		{"restarted", t.Restarted},
		{"time", t.Time},
		{"impact", t.Impact},
		{"extra", t.Extra},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		parts = append(parts, f.key+"="+v)
	}
	return strings.Join(parts, " | ")
}
