package logs

import "regexp"

type secretPattern struct {
	pattern     *regexp.Regexp
	replacement string
}

// Ordered so that whole tokens are masked before the key=value forms that contain them.
var secretPatterns = []secretPattern{
	{regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----[\s\S]*?(?:-----END\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----|$)`), "[PRIVATE_KEY_REDACTED]"},
	{regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`), "[JWT_REDACTED]"},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-\.=]{20,}`), "Bearer [TOKEN_REDACTED]"},
	{regexp.MustCompile(`\bsk_[A-Za-z0-9]{32,}\b`), "[API_KEY_REDACTED]"},
	{regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), "[AWS_KEY_REDACTED]"},
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis)://[^:\s/]+:[^@\s]+@`), "$1://[CREDENTIALS_REDACTED]@"},
	{regexp.MustCompile(`(?i)\b(api[_\-]?key|xi-api-key|access[_\-]?token|refresh[_\-]?token|client[_\-]?secret|password|passwd)(["']?\s*[:=]\s*["']?)[^\s"',;&]{6,}`), "$1$2[REDACTED]"},
}

// redactSecrets masks credentials a client may have pasted into a log message
func redactSecrets(text string) (string, bool) {
	redacted := false
	for _, p := range secretPatterns {
		if !p.pattern.MatchString(text) {
			continue
		}
		redacted = true
		text = p.pattern.ReplaceAllString(text, p.replacement)
	}
	return text, redacted
}
