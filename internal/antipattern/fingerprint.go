package antipattern

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/thebtf/promptscope/pkg/models"
)

// codeBlockRe matches fenced code blocks, newlines included.
var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// fingerprint derives a deterministic match identity from the anchoring
// prompt's timestamp, a text prefix and the firing rule. It is an
// idempotence aid, not a security primitive.
func fingerprint(p *models.Prompt, rule string) string {
	prefix := p.Text
	if utf8.RuneCountInString(prefix) > 50 {
		prefix = string([]rune(prefix)[:50])
	}
	sum := sha256.Sum256([]byte(p.Timestamp.UTC().Format(time.RFC3339Nano) + "_" + prefix + "_" + rule))
	return hex.EncodeToString(sum[:])[:12]
}
