package document

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// StripComments removes comments from source code, using the lexer matched
// by file name. Lines left blank are dropped. The second result is false
// when no lexer matched and text is returned unchanged.
func StripComments(text, filename string) (string, bool) {
	lex := lexers.Match(filename)
	if lex == nil {
		return text, false
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text, false
	}
	var b strings.Builder
	for _, tok := range it.Tokens() {
		if isComment(tok.Type) {
			continue
		}
		b.WriteString(tok.Value)
	}

	kept := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), true
}

// isComment matches comments and docstrings but keeps preprocessor lines,
// which chroma files under the comment category.
func isComment(t chroma.TokenType) bool {
	if t == chroma.LiteralStringDoc {
		return true
	}
	return t.InCategory(chroma.Comment) && !t.InSubCategory(chroma.CommentPreproc)
}
