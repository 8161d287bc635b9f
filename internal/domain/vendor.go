package domain

import (
	"regexp"
	"strings"
)

// Transaction-mechanics tokens banks prepend to narrations. Stripped before
// the counterparty name is extracted.
var mechanicsTokens = map[string]bool{
	"pos": true, "atm": true, "web": true, "nip": true, "ussd": true,
	"trf": true, "transfer": true, "tfr": true, "txn": true, "trx": true,
	"mc": true, "visa": true, "mcard": true, "card": true,
	"pmt": true, "payment": true, "pur": true, "purchase": true,
	"ref": true, "chq": true, "cheque": true, "dep": true, "wdl": true,
	"debit": true, "credit": true, "online": true, "mobile": true,
}

// Directional prepositions carry no name information.
var directionTokens = map[string]bool{
	"from": true, "to": true, "for": true, "via": true, "at": true, "by": true,
}

var (
	longDigitRun  = regexp.MustCompile(`\d{6,}`)
	dateLikeToken = regexp.MustCompile(`\b\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b`)
	separatorRun  = regexp.MustCompile(`[-_/|*:~]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

const (
	minVendorNameLen = 3
	maxVendorNameLen = 100
)

// ExtractVendorName pulls a counterparty name out of a raw statement
// description. Best effort: returning nothing is fine, leaking mechanics
// text into the name is not.
func ExtractVendorName(description string) (string, bool) {
	s := strings.ToLower(description)
	s = dateLikeToken.ReplaceAllString(s, " ")
	s = longDigitRun.ReplaceAllString(s, " ")
	s = separatorRun.ReplaceAllString(s, " ")

	words := whitespaceRun.Split(strings.TrimSpace(s), -1)

	kept := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;()[]")
		if w == "" || mechanicsTokens[w] || directionTokens[w] {
			continue
		}
		kept = append(kept, titleWord(w))
	}

	name := strings.Join(kept, " ")
	if len(name) < minVendorNameLen || len(name) > maxVendorNameLen {
		return "", false
	}

	return name, true
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
