package renderer

import (
	"regexp"
	"strings"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/contractdata"
	"DR-SIGN/internal/models"
)

var (
	pathExprRE   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*$`)
	blockTokenRE = regexp.MustCompile(`^[#/^>!&]|^(?:if|each|else|with|unless)\b`)
)

// ValidateTemplate checks the placeholder syntax of legacy HTML content.
// Placeholders must be balanced, non-nested and hold a dotted path or a
// "+" concatenation of paths. Nothing is evaluated.
func ValidateTemplate(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("template content is empty")
	}

	rest := content
	offset := 0
	for {
		open := strings.Index(rest, "{{")
		stray := strings.Index(rest, "}}")
		if open < 0 {
			if stray >= 0 {
				return apperr.Validationf("unexpected '}}' at position %d", offset+stray)
			}
			return nil
		}
		if stray >= 0 && stray < open {
			return apperr.Validationf("unexpected '}}' at position %d", offset+stray)
		}
		body := rest[open+2:]
		end := strings.Index(body, "}}")
		if end < 0 {
			return apperr.Validationf("unclosed '{{' at position %d", offset+open)
		}
		inner := body[:end]
		if strings.ContainsAny(inner, "{}") {
			return apperr.Validationf("nested placeholder at position %d", offset+open)
		}
		if err := validateExpression(strings.TrimSpace(inner)); err != nil {
			return err
		}
		consumed := open + 2 + end + 2
		offset += consumed
		rest = rest[consumed:]
	}
}

func validateExpression(expr string) error {
	if expr == "" {
		return apperr.Validation("empty placeholder '{{}}'")
	}
	if blockTokenRE.MatchString(expr) {
		return apperr.Validationf("unsupported construct '{{%s}}'", expr)
	}
	for _, operand := range strings.Split(expr, "+") {
		operand = strings.TrimSpace(operand)
		if !pathExprRE.MatchString(operand) {
			return apperr.Validationf("invalid placeholder '{{%s}}'", expr)
		}
	}
	return nil
}

// Render substitutes every resolvable placeholder. Unresolved ones stay as
// literal text and values are inserted without escaping.
func Render(content string, data map[string]any) string {
	return Substitute(content, data, false)
}

// RenderContractTemplate prepares the contract data and renders content with it.
func RenderContractTemplate(content string, contract *models.Contract, opts contractdata.Options) string {
	return Render(content, contractdata.Prepare(contract, opts))
}

// ExtractPlaceholders lists the distinct placeholder expressions in content,
// in order of first appearance.
func ExtractPlaceholders(content string) []string {
	matches := placeholderRE.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		expr := strings.TrimSpace(m[1])
		if expr == "" || seen[expr] {
			continue
		}
		seen[expr] = true
		out = append(out, expr)
	}
	return out
}
