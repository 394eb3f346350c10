package mcpserver

// LinkSyntaxURI is the resource URI of LinkSyntax.
const LinkSyntaxURI = "xref://link-syntax"

// LinkSyntax describes which Markdown links the checker follows and how
// their targets are resolved.
const LinkSyntax = `# Link Syntax

xref follows inline Markdown links between documents of one corpus.

## Recognized

` + "```" + `markdown
[label](other.md)
[label](../sessions/Meet%20SwiftData.md#overview)
[label](<Meet SwiftData.md> "optional title")
[label](/guides/setup.md)
[the [new] APIs](whats-new.md)
[a label wrapped
across lines](wrapped.md)
` + "```" + `

## Ignored

- External targets: anything with a URL scheme (` + "`" + `https:` + "`" + `, ` + "`" + `mailto:` + "`" + `) or ` + "`" + `//host` + "`" + `.
- Fragment-only targets such as ` + "`" + `[top](#intro)` + "`" + `. They point inside the current document.
- Images: ` + "`" + `![alt](img.png)` + "`" + `.
- Escaped brackets ` + "`" + `\[not a link](x.md)` + "`" + `.
- Anything inside fenced code blocks, indented code blocks and code spans.
- Anything inside leading YAML frontmatter.

## Resolution

1. The fragment after ` + "`" + `#` + "`" + ` is split off and kept for reporting only.
2. The path is percent-decoded (` + "`" + `%20` + "`" + ` becomes a space).
3. A leading ` + "`" + `/` + "`" + ` is relative to the corpus root. Otherwise the path is
   relative to the directory of the linking document.
4. The result is cleaned (` + "`" + `.` + "`" + ` and ` + "`" + `..` + "`" + ` removed) and compared with
   document IDs, which are slash-separated paths relative to the root.

A link whose resolved path is not a document is **dangling**. A document that
no other document links to, and that is not an entry point, is an **orphan**.
`
