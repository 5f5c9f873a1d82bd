package engine

import (
	"crypto/rand"
	"regexp"
	"strings"
)

const (
	// Jeu de caractères sans ambiguïté (pas de I, L, O, 0, 1)
	codeCharset   = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codePrefixMax = 10
	codeSuffixLen = 4
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// GenerateCode construit un code lisible à partir du nom de facturation:
// prénom+nom normalisés et tronqués à 10 caractères, un tiret, puis un
// suffixe aléatoire de 4 caractères. L'unicité est probabiliste — l'émission
// retente avec un nouveau suffixe en cas de collision.
//
// Pour un client invité sans nom, le code se réduit au suffixe seul,
// sans tiret de tête.
func GenerateCode(firstName, lastName string) string {
	first := nonAlnum.ReplaceAllString(firstName, "")
	last := nonAlnum.ReplaceAllString(lastName, "")

	base := strings.ToUpper(first + last)
	if len(base) > codePrefixMax {
		base = base[:codePrefixMax]
	}

	suffix := randomSuffix(codeSuffixLen)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	// crypto/rand ne peut échouer que si le système est hors d'état;
	// dans ce cas buf reste à zéro et le suffixe est constant
	_, _ = rand.Read(buf)

	out := make([]byte, n)
	for i, b := range buf {
		out[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(out)
}
