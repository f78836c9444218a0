package analysis

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

var (
	shortcodePattern = regexp.MustCompile(`(?i)^[a-z0-9_]+$`)
	tokenPattern     = regexp.MustCompile(`:([A-Za-z0-9_]+):`)
)

// EmojifyDisplayName escapes name for HTML and replaces every :shortcode: of a custom emoji with an image tag.
// Emojis whose shortcode or image URL is unsafe are skipped, so their shortcode stays as plain text. The name is
// scanned once and inserted tags are never scanned again.
func EmojifyDisplayName(name string, emojis []domain.Emoji) string {
	escaped := html.EscapeString(name)

	tags := make(map[string]string, len(emojis))
	for _, e := range emojis {
		if !shortcodePattern.MatchString(e.Shortcode) {
			log.Warn().Str("shortcode", e.Shortcode).Msg("skipping emoji with invalid shortcode")
			continue
		}
		if _, ok := tags[e.Shortcode]; ok {
			continue
		}

		src, ok := emojiURL(e)
		if !ok {
			log.Warn().Str("shortcode", e.Shortcode).Msg("skipping emoji with unsafe url")
			continue
		}

		tags[e.Shortcode] = fmt.Sprintf(`<img src="%s" alt="%s" class="emoji" draggable="false" loading="lazy" />`,
			html.EscapeString(src), e.Shortcode)
	}
	if len(tags) == 0 {
		return escaped
	}

	var b strings.Builder
	rest := escaped
	for {
		loc := tokenPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			break
		}

		tag, ok := tags[rest[loc[2]:loc[3]]]
		if !ok {
			// The closing colon may open the next token, as in ":unknown:known:".
			b.WriteString(rest[:loc[1]-1])
			rest = rest[loc[1]-1:]
			continue
		}

		b.WriteString(rest[:loc[0]])
		b.WriteString(tag)
		rest = rest[loc[1]:]
	}

	return b.String()
}

// emojiURL prefers the static image and only accepts absolute https URLs.
func emojiURL(e domain.Emoji) (string, bool) {
	raw := e.StaticURL
	if raw == "" {
		raw = e.URL
	}
	if !strings.HasPrefix(raw, "https://") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", false
	}

	return raw, true
}
