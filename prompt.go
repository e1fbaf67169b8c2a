package jdoc

import (
	"fmt"
	"strings"
)

// DefaultMaxSnippetBytes bounds the source excerpt sent for one element.
const DefaultMaxSnippetBytes = 3000

// DefaultPromptBuilder implements PromptBuilder.
type DefaultPromptBuilder struct {
	// MaxSnippetBytes bounds the excerpt. Method bodies larger than this are
	// replaced by the signature alone. Zero means DefaultMaxSnippetBytes.
	MaxSnippetBytes int
}

// Build creates the request for the element at index.
func (b *DefaultPromptBuilder) Build(text string, structure *Structure, index int, ctx RequestContext) (CommentRequest, error) {
	if index < 0 || index >= len(structure.Elements) {
		return CommentRequest{}, fmt.Errorf("element index %d out of range", index)
	}
	span := structure.Elements[index]
	if span.Start < 0 || span.End > len(text) || span.SignatureEnd < span.Start || span.SignatureEnd > span.End {
		return CommentRequest{}, fmt.Errorf("element %q: span outside text", span.Name)
	}
	limit := b.MaxSnippetBytes
	if limit <= 0 {
		limit = DefaultMaxSnippetBytes
	}

	ctx.Package = structure.Package
	if span.Parent >= 0 {
		ctx.EnclosingType = structure.Elements[span.Parent].Name
	}

	var snippet string
	switch span.Kind {
	case KindClass, KindInterface, KindEnum:
		snippet = typeSnippet(text, structure, index, limit)
	case KindMethod, KindConstructor:
		snippet = text[span.Start:span.End]
		if len(snippet) > limit {
			snippet = strings.TrimRight(text[span.Start:span.SignatureEnd], " \t\r\n")
			if span.SignatureEnd < span.End && text[span.SignatureEnd] == '{' {
				snippet += " { ... }"
			}
		}
	default:
		snippet = text[span.Start:span.End]
	}

	return CommentRequest{
		Target:  span,
		Snippet: truncate(dedent(snippet, indentOf(text, span.Start)), limit),
		Context: ctx,
		Format:  FormatFor(span.Kind),
	}, nil
}

func typeSnippet(text string, structure *Structure, index, limit int) string {
	span := structure.Elements[index]
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(text[span.Start:span.SignatureEnd], " \t\r\n"))
	sb.WriteString(" {\n")
	for _, child := range structure.Elements[index+1:] {
		if child.Start >= span.End {
			break
		}
		if child.Parent != index {
			continue
		}
		line := fmt.Sprintf("    // %s %s\n", child.Kind, child.Name)
		if sb.Len()+len(line) > limit {
			sb.WriteString("    // ...\n")
			break
		}
		sb.WriteString(line)
	}
	sb.WriteString("}")
	return sb.String()
}

// indentOf returns the whitespace between the start of the line holding
// offset and offset itself.
func indentOf(text string, offset int) string {
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	indent := text[lineStart:offset]
	if strings.Trim(indent, " \t") != "" {
		return ""
	}
	return indent
}

// dedent strips indent from every line of s that starts with it.
func dedent(s, indent string) string {
	if indent == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := strings.LastIndexByte(s[:limit], '\n')
	if cut <= 0 {
		cut = limit
	}
	return s[:cut] + "\n// ..."
}

// RenderPrompt renders req as the prompt sent to a text generator. language
// names the natural language of the comment. strict adds the tighter
// instructions used when re-requesting after an invalid response.
func RenderPrompt(req CommentRequest, language string, strict bool) string {
	if language == "" {
		language = "English"
	}
	var sb strings.Builder

	sb.WriteString("<context>\n")
	if req.Context.Path != "" {
		fmt.Fprintf(&sb, "File: %s\n", req.Context.Path)
	}
	if req.Context.Package != "" {
		fmt.Fprintf(&sb, "Package: %s\n", req.Context.Package)
	}
	if req.Context.EnclosingType != "" {
		fmt.Fprintf(&sb, "Enclosing type: %s\n", req.Context.EnclosingType)
	}
	fmt.Fprintf(&sb, "Element: %s %s\n", req.Target.Kind, req.Target.Name)
	sb.WriteString("</context>\n\n")

	sb.WriteString("<code>\n")
	sb.WriteString(req.Snippet)
	if !strings.HasSuffix(req.Snippet, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("</code>\n\n")

	sb.WriteString("## Task\n\n")
	switch req.Format {
	case FormatLineComment:
		fmt.Fprintf(&sb, "Write a one-line comment in %s describing the purpose of this %s.\n", language, req.Target.Kind)
		sb.WriteString("Do not repeat the name or the type; say what the value means.\n")
	default:
		fmt.Fprintf(&sb, "Write the body of a Javadoc comment in %s for this %s.\n", language, req.Target.Kind)
		switch req.Target.Kind {
		case KindMethod, KindConstructor:
			sb.WriteString("Start with a one-sentence summary. After a blank line add @param for each parameter, ")
			sb.WriteString("@return unless the method returns void or is a constructor, and @throws for each declared exception.\n")
		default:
			sb.WriteString("Start with a one-sentence summary of the type's responsibility, then at most a short paragraph on how it is used.\n")
		}
	}
	sb.WriteString("Reply with the comment text only, without /** */ or // delimiters and without leading asterisks.\n")

	if strict {
		sb.WriteString("\n## Format requirements\n\n")
		sb.WriteString("Your previous reply could not be used. Follow these rules exactly:\n")
		sb.WriteString("- Plain text only: no Markdown code fences.\n")
		sb.WriteString("- Never write the character sequence */ anywhere.\n")
		sb.WriteString("- Never write \\u escape sequences.\n")
		sb.WriteString("- Keep the reply short.\n")
	}
	return sb.String()
}

// SystemInstruction is the instruction given to providers that accept one.
const SystemInstruction = `You are a senior Java developer writing API documentation. You describe what code does and why a caller would use it, concisely and accurately. You never invent behavior that is not visible in the code.`
